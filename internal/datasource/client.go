package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	AuthHeader  = "Authorization"
	ContentType = "Content-Type"

	requestTimeout = 60 * time.Second

	// The datasource proxy is shared with the host's own queries; cap the
	// request rate so an editing or paging burst cannot starve it.
	requestsPerSecond = 50
	requestBurst      = 100
)

// Client performs datasource requests against the host's datasource proxy
// API. One client serves one datasource.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewClient(log *zap.Logger, url, apiKey string) *Client {
	return &Client{
		logger:  log,
		baseURL: url,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}
}

// Request posts the query and payload to the datasource proxy and decodes
// the response state. Template variables are interpolated into string
// query values before sending.
func (c *Client) Request(ctx context.Context, req Request, replace ReplaceVariables) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("request rate limit wait cancelled: %w", err)
	}
	url := fmt.Sprintf("%s/api/datasources/uid/%s/resources/execute", c.baseURL, req.DatasourceUID)

	body := map[string]any{
		"query":   interpolate(req.Query, replace),
		"payload": req.Payload,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(ContentType, "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set(AuthHeader, "Bearer "+c.apiKey)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	httpReq = httpReq.WithContext(ctx)

	c.logger.Debug("Sending datasource request", zap.String("datasource", req.DatasourceUID), zap.String("url", url))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("HTTP request failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close response body", zap.Error(err))
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read response body", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Datasource request failed", zap.String("url", url), zap.Int("status", resp.StatusCode), zap.String("response", string(respBody)))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var dsResp Response
	if err := json.Unmarshal(respBody, &dsResp); err != nil {
		c.logger.Error("Failed to parse datasource response", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if dsResp.State == "" {
		dsResp.State = StateDone
	}

	c.logger.Debug("Datasource request finished", zap.String("datasource", req.DatasourceUID), zap.String("state", string(dsResp.State)))
	return &dsResp, nil
}

// interpolate applies variable replacement to every string value of the
// query, leaving the input untouched.
func interpolate(query map[string]any, replace ReplaceVariables) map[string]any {
	if query == nil || replace == nil {
		return query
	}
	out := make(map[string]any, len(query))
	for k, v := range query {
		switch t := v.(type) {
		case string:
			out[k] = replace(t)
		case map[string]any:
			out[k] = interpolate(t, replace)
		default:
			out[k] = v
		}
	}
	return out
}
