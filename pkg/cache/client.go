package cache

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/linked-planet/go-http-client/pkg/httpclient"
	"github.com/linked-planet/go-http-client/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultTTL is used when Config.TTL is not positive.
const DefaultTTL = 5 * time.Minute

// Config holds the decorator configuration.
type Config struct {
	// TTL of every cached response.
	TTL time.Duration

	// Prefix namespaces the Redis keys.
	Prefix string

	// Logger receives cache failures. Defaults to the "cache" component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns a configuration with DefaultTTL and DefaultPrefix.
func DefaultConfig() Config {
	return Config{
		TTL:    DefaultTTL,
		Prefix: DefaultPrefix,
	}
}

// Client caches successful GET responses of the wrapped client.
type Client struct {
	next    httpclient.BaseHTTPClient
	manager *Manager
	ttl     time.Duration
	prefix  string
	logger  zerolog.Logger
}

var _ httpclient.BaseHTTPClient = (*Client)(nil)

// NewClient wraps next with a Redis response cache.
func NewClient(next httpclient.BaseHTTPClient, redisClient *redis.Client, cfg Config) *Client {
	if next == nil {
		panic("wrapped client cannot be nil")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	logger := logging.NewLogger("cache")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		next:    next,
		manager: NewManager(redisClient),
		ttl:     cfg.TTL,
		prefix:  cfg.Prefix,
		logger:  logger,
	}
}

// ExecuteRestCall implements httpclient.BaseHTTPClient.
func (c *Client) ExecuteRestCall(ctx context.Context, method, path string, params httpclient.Params, body, contentType string, headers map[string]string) (httpclient.HTTPResponse[string], error) {
	// The key covers method, path and params only.
	if method != http.MethodGet || body != "" || len(headers) > 0 {
		return c.next.ExecuteRestCall(ctx, method, path, params, body, contentType, headers)
	}

	key := c.key(method, path, params)

	entry, err := c.manager.Get(ctx, key)
	switch {
	case err == nil:
		CacheHits.Inc()
		c.logger.Debug().Str("key", key.String()).Msg("Cache hit")
		return entry.Response(), nil
	case errors.Is(err, ErrCacheMiss):
		CacheMisses.Inc()
	default:
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache read failed, calling backend")
	}

	resp, err := c.next.ExecuteRestCall(ctx, method, path, params, body, contentType, headers)
	if err != nil {
		return resp, err
	}

	if httpclient.IsSuccess(resp.StatusCode) {
		if err := c.manager.Set(ctx, key, NewEntry(resp, c.ttl)); err != nil {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache write failed")
		}
	}

	return resp, nil
}

// ExecuteDownload passes through to the wrapped client.
func (c *Client) ExecuteDownload(ctx context.Context, method, url string, params httpclient.Params, body, contentType string) (httpclient.HTTPResponse[[]byte], error) {
	return c.next.ExecuteDownload(ctx, method, url, params, body, contentType)
}

// ExecuteUpload passes through to the wrapped client.
func (c *Client) ExecuteUpload(ctx context.Context, method, url string, params httpclient.Params, mimeType, filename string, data []byte) (httpclient.HTTPResponse[[]byte], error) {
	return c.next.ExecuteUpload(ctx, method, url, params, mimeType, filename, data)
}

// Invalidate removes the cached GET response for path and params.
func (c *Client) Invalidate(ctx context.Context, path string, params httpclient.Params) error {
	return c.manager.Delete(ctx, c.key(http.MethodGet, path, params))
}

func (c *Client) key(method, path string, params httpclient.Params) Key {
	return Key{Prefix: c.prefix, Method: method, Path: path, Params: params}
}
