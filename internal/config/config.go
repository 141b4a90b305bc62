package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config carries everything the server process needs at startup. Values
// come from environment variables prefixed with DATAGRID, overridable by
// command-line flags bound through viper.
type Config struct {
	ListenAddr        string `mapstructure:"listen_addr"`
	DatasourceURL     string `mapstructure:"datasource_url"`
	DatasourceAPIKey  string `mapstructure:"datasource_api_key"`
	LogLevel          string `mapstructure:"log_level"`
	ClientCacheSize   int    `mapstructure:"client_cache_size"`
	TelemetryWriteKey string `mapstructure:"telemetry_write_key"`
	OTLPEndpoint      string `mapstructure:"otlp_endpoint"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DATAGRID")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("client_cache_size", 16)

	for _, key := range []string{
		"listen_addr", "datasource_url", "datasource_api_key",
		"log_level", "client_cache_size", "telemetry_write_key",
		"otlp_endpoint",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.DatasourceURL == "" {
		return nil, fmt.Errorf("environment variable `DATAGRID_DATASOURCE_URL` not set")
	}
	return cfg, nil
}
