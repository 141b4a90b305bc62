package datasource

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// ClientCache hands out one Client per datasource UID, evicting the least
// recently used when the panel references many datasources.
type ClientCache struct {
	baseURL string
	apiKey  string
	logger  *zap.Logger
	clients *lru.Cache[string, *Client]
}

func NewClientCache(log *zap.Logger, baseURL, apiKey string, size int) (*ClientCache, error) {
	if size <= 0 {
		size = 16
	}
	clients, err := lru.New[string, *Client](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create client cache: %w", err)
	}
	return &ClientCache{
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  log,
		clients: clients,
	}, nil
}

// Get returns the cached client for the datasource, creating it on first
// use.
func (c *ClientCache) Get(datasourceUID string) *Client {
	if client, ok := c.clients.Get(datasourceUID); ok {
		return client
	}
	c.logger.Debug("Creating datasource client", zap.String("datasource", datasourceUID))
	client := NewClient(c.logger, c.baseURL, c.apiKey)
	c.clients.Add(datasourceUID, client)
	return client
}

// Request routes the call to the client of the request's datasource,
// making the cache itself a Requester.
func (c *ClientCache) Request(ctx context.Context, req Request, replace ReplaceVariables) (*Response, error) {
	return c.Get(req.DatasourceUID).Request(ctx, req, replace)
}
