package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"github.com/gridworks/datagrid-panel/internal/config"
	"github.com/gridworks/datagrid-panel/internal/datasource"
	"github.com/gridworks/datagrid-panel/internal/logger"
	"github.com/gridworks/datagrid-panel/internal/server"
	"github.com/gridworks/datagrid-panel/internal/telemetry"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

var rootCmd = &cobra.Command{
	Use:   "datagrid-panel",
	Short: "Serve the data-grid panel engine over HTTP",
	RunE:  run,
}

func init() {
	rootCmd.Flags().String("listen", "", "HTTP listen address (overrides DATAGRID_LISTEN_ADDR)")
	rootCmd.Flags().String("options", "panel.json", "Path to the panel options file")
	viper.BindPFlag("listen_addr", rootCmd.Flags().Lookup("listen"))
}

func loadOptions(path string) (types.PanelOptions, error) {
	var options types.PanelOptions
	data, err := os.ReadFile(path)
	if err != nil {
		return options, fmt.Errorf("failed to read panel options: %w", err)
	}
	if err := json.Unmarshal(data, &options); err != nil {
		return options, fmt.Errorf("failed to parse panel options: %w", err)
	}
	return options, nil
}

// setupTracing wires the OTLP gRPC exporter when an endpoint is
// configured; the returned shutdown flushes pending spans.
func setupTracing(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName("datagrid-panel")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if listen := viper.GetString("listen_addr"); listen != "" {
		cfg.ListenAddr = listen
	}

	log, err := logger.NewLogger(logger.LogLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	shutdownTracing, err := setupTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	optionsPath, err := cmd.Flags().GetString("options")
	if err != nil {
		return err
	}
	options, err := loadOptions(optionsPath)
	if err != nil {
		return err
	}

	requester, err := datasource.NewClientCache(log, cfg.DatasourceURL, cfg.DatasourceAPIKey, cfg.ClientCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create datasource clients: %w", err)
	}

	tracker := telemetry.New(cfg.TelemetryWriteKey, log)
	defer tracker.Close()

	srv, err := server.New(log, options, requester, tracker)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(cfg.ListenAddr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
