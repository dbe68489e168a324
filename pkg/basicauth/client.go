// Package basicauth implements httpclient.BaseHTTPClient with a resty client
// bound to one base URL and HTTP Basic credentials.
//
// Failure policy: every completed exchange is a success, whatever its
// status; callers inspect HTTPResponse.StatusCode. Errors are produced only
// for unsupported methods and for requests that never received a response,
// both with code domainerr.CodeHTTP.
package basicauth

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/linked-planet/go-http-client/pkg/domainerr"
	"github.com/linked-planet/go-http-client/pkg/httpclient"
	"github.com/linked-planet/go-http-client/pkg/logging"
	"github.com/rs/zerolog"
)

// BackendName labels metrics and logs of this backend.
const BackendName = "basicauth"

// Config holds the client configuration.
type Config struct {
	// BaseURL is prepended to every REST and upload path.
	BaseURL string

	Username string
	Password string

	// Timeout per request.
	Timeout time.Duration

	// Transport replaces the default round tripper when set.
	Transport http.RoundTripper
}

// DefaultConfig returns a configuration with a 30 second timeout.
func DefaultConfig(baseURL, username, password string) Config {
	return Config{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		Timeout:  30 * time.Second,
	}
}

// Client is a BaseHTTPClient backed by one long-lived resty client.
type Client struct {
	baseURL string
	resty   *resty.Client
	logger  zerolog.Logger
}

var _ httpclient.BaseHTTPClient = (*Client)(nil)

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("username is required")
	}

	logger := logging.NewLogger(BackendName)

	r := resty.New().
		SetBasicAuth(cfg.Username, cfg.Password).
		SetAllowGetMethodPayload(true).
		SetDisableWarn(true).
		SetLogger(restyLogger{logger: logger})
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}
	if cfg.Transport != nil {
		r.SetTransport(cfg.Transport)
	}

	// Logged once per client; resty's per-request warning is disabled.
	if strings.HasPrefix(strings.ToLower(cfg.BaseURL), "http://") {
		logger.Warn().Str("base_url", cfg.BaseURL).Msg("Basic Auth credentials are sent over plain HTTP")
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		resty:   r,
		logger:  logger,
	}
	r.OnAfterResponse(c.observe)
	r.OnError(c.observeError)

	return c, nil
}

// ExecuteRestCall implements httpclient.BaseHTTPClient. Only GET, POST, PUT
// and DELETE are supported.
func (c *Client) ExecuteRestCall(ctx context.Context, method, path string, params httpclient.Params, body, contentType string, headers map[string]string) (httpclient.HTTPResponse[string], error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		httpclient.ObserveError(BackendName, domainerr.CodeHTTP)
		return httpclient.HTTPResponse[string]{}, domainerr.New(domainerr.CodeHTTP,
			fmt.Sprintf("Method '%s' not available", method))
	}

	req := c.resty.R().
		SetContext(ctx).
		SetHeaders(headers)
	if body != "" {
		if contentType == "" {
			contentType = httpclient.ContentTypeJSON
		}
		req.SetHeader("Content-Type", contentType).SetBody(body)
	}

	url := httpclient.WithParams(c.baseURL+"/"+strings.TrimLeft(path, "/"), params)
	c.logger.Debug().Str("method", method).Str("path", path).Msg("Executing request")

	resp, err := req.Execute(method, url)
	if err != nil {
		return httpclient.HTTPResponse[string]{}, c.transportError(method, path, err)
	}
	return httpclient.HTTPResponse[string]{StatusCode: resp.StatusCode(), Body: string(resp.Body())}, nil
}

// ExecuteDownload implements httpclient.BaseHTTPClient. url is absolute; the
// request is always a GET without body, so method, body and contentType are
// ignored.
func (c *Client) ExecuteDownload(ctx context.Context, method, url string, params httpclient.Params, body, contentType string) (httpclient.HTTPResponse[[]byte], error) {
	c.logger.Debug().Str("method", http.MethodGet).Str("path", url).Msg("Executing download")

	resp, err := c.resty.R().
		SetContext(ctx).
		Get(httpclient.WithParams(url, params))
	if err != nil {
		return httpclient.HTTPResponse[[]byte]{}, c.transportError(http.MethodGet, url, err)
	}
	return httpclient.HTTPResponse[[]byte]{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// ExecuteUpload implements httpclient.BaseHTTPClient. data is POSTed to
// BaseURL+url as the multipart form field "file"; method is ignored.
func (c *Client) ExecuteUpload(ctx context.Context, method, url string, params httpclient.Params, mimeType, filename string, data []byte) (httpclient.HTTPResponse[[]byte], error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	c.logger.Debug().Str("method", http.MethodPost).Str("path", url).Str("filename", filename).Msg("Executing upload")

	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("Connection", "keep-alive").
		SetHeader("Cache-Control", "no-cache").
		SetMultipartField("file", filename, mimeType, bytes.NewReader(data)).
		Post(httpclient.WithParams(c.baseURL+url, params))
	if err != nil {
		return httpclient.HTTPResponse[[]byte]{}, c.transportError(http.MethodPost, url, err)
	}
	return httpclient.HTTPResponse[[]byte]{StatusCode: resp.StatusCode(), Body: data}, nil
}

func (c *Client) transportError(method, path string, err error) error {
	httpclient.ObserveError(BackendName, domainerr.CodeHTTP)
	c.logger.Warn().
		Err(err).
		Str("method", method).
		Str("path", path).
		Msg("Request did not complete")
	return domainerr.Wrap(domainerr.CodeHTTP, err.Error(), err)
}

// observe records metrics for every completed exchange.
func (c *Client) observe(_ *resty.Client, resp *resty.Response) error {
	httpclient.Observe(BackendName, resp.Request.Method, resp.StatusCode(), resp.Request.Time)
	if !httpclient.IsSuccess(resp.StatusCode()) {
		c.logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Msg("Non-2xx response passed through")
	}
	return nil
}

// observeError records requests that failed without a response.
func (c *Client) observeError(req *resty.Request, _ error) {
	httpclient.Observe(BackendName, req.Method, 0, req.Time)
}

// restyLogger routes resty's internal logging into zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
