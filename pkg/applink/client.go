// Package applink implements httpclient.BaseHTTPClient on top of an
// application link: an externally supplied factory for authenticated
// requests against one linked remote application.
//
// Failure policy: any non-2xx response is returned as a
// *domainerr.ResponseError carrying status, status text and body. A request
// that never produced a response yields a DomainError with code
// domainerr.CodeInternal. Unknown method names yield
// domainerr.CodeInvalidMethod.
package applink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/linked-planet/go-http-client/pkg/domainerr"
	"github.com/linked-planet/go-http-client/pkg/httpclient"
	"github.com/linked-planet/go-http-client/pkg/logging"
	"github.com/rs/zerolog"
)

// BackendName labels metrics and logs of this backend.
const BackendName = "applink"

// Client executes requests through an ApplicationLink.
type Client struct {
	link   ApplicationLink
	logger zerolog.Logger
}

var _ httpclient.BaseHTTPClient = (*Client)(nil)

// New creates a Client for link.
func New(link ApplicationLink) (*Client, error) {
	if link == nil {
		return nil, fmt.Errorf("application link is required")
	}
	return &Client{
		link:   link,
		logger: logging.NewLogger(BackendName),
	}, nil
}

// exchange is a completed request whose status may still be a failure.
type exchange struct {
	statusCode int
	body       []byte
}

// ExecuteRestCall implements httpclient.BaseHTTPClient.
func (c *Client) ExecuteRestCall(ctx context.Context, method, path string, params httpclient.Params, body, contentType string, headers map[string]string) (httpclient.HTTPResponse[string], error) {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	ex, err := c.execute(ctx, method, path, params, reqBody, func(h map[string]string) {
		if body != "" && contentType != "" {
			h["Content-Type"] = contentType
		}
		for k, v := range headers {
			h[k] = v
		}
	})
	if err != nil {
		return httpclient.HTTPResponse[string]{}, err
	}
	return httpclient.HTTPResponse[string]{StatusCode: ex.statusCode, Body: string(ex.body)}, nil
}

// ExecuteDownload implements httpclient.BaseHTTPClient.
func (c *Client) ExecuteDownload(ctx context.Context, method, url string, params httpclient.Params, body, contentType string) (httpclient.HTTPResponse[[]byte], error) {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	ex, err := c.execute(ctx, method, url, params, reqBody, func(h map[string]string) {
		if body != "" && contentType != "" {
			h["Content-Type"] = contentType
		}
	})
	if err != nil {
		return httpclient.HTTPResponse[[]byte]{}, err
	}
	return httpclient.HTTPResponse[[]byte]{StatusCode: ex.statusCode, Body: ex.body}, nil
}

// ExecuteUpload implements httpclient.BaseHTTPClient. data is sent as the
// multipart form field "file".
func (c *Client) ExecuteUpload(ctx context.Context, method, url string, params httpclient.Params, mimeType, filename string, data []byte) (httpclient.HTTPResponse[[]byte], error) {
	form, formContentType, err := multipartFile(mimeType, filename, data)
	if err != nil {
		return httpclient.HTTPResponse[[]byte]{}, domainerr.Wrap(domainerr.CodeInternal, "", err)
	}

	ex, err := c.execute(ctx, method, url, params, form, func(h map[string]string) {
		h["Content-Type"] = formContentType
	})
	if err != nil {
		return httpclient.HTTPResponse[[]byte]{}, err
	}
	return httpclient.HTTPResponse[[]byte]{StatusCode: ex.statusCode, Body: data}, nil
}

// execute runs one request and applies the failure policy.
func (c *Client) execute(ctx context.Context, method, path string, params httpclient.Params, body io.Reader, setHeaders func(map[string]string)) (*exchange, error) {
	methodType, err := ParseMethodType(method)
	if err != nil {
		httpclient.ObserveError(BackendName, domainerr.CodeInvalidMethod)
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("Rejected request method")
		return nil, err
	}

	factory := c.link.CreateAuthenticatedRequestFactory()
	req, err := factory.CreateRequest(ctx, methodType, httpclient.WithParams(path, params), body)
	if err != nil {
		return nil, c.internalError(method, path, err)
	}

	headers := map[string]string{}
	setHeaders(headers)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Msg("Executing request")

	start := time.Now()
	resp, err := factory.Execute(req)
	if err != nil {
		httpclient.Observe(BackendName, method, 0, start)
		return nil, c.internalError(method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	httpclient.Observe(BackendName, method, resp.StatusCode, start)
	if err != nil {
		return nil, c.internalError(method, path, fmt.Errorf("read response body: %w", err))
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		respErr := domainerr.NewResponseError(path, resp.StatusCode, statusText(resp.Status, resp.StatusCode), string(data))
		httpclient.ObserveError(BackendName, respErr.Code)
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Request failed")
		return nil, respErr
	}

	return &exchange{
		statusCode: resp.StatusCode,
		body:       data,
	}, nil
}

func (c *Client) internalError(method, path string, cause error) error {
	httpclient.ObserveError(BackendName, domainerr.CodeInternal)
	c.logger.Warn().
		Err(cause).
		Str("method", method).
		Str("path", path).
		Msg("Request did not complete")
	return domainerr.Wrap(domainerr.CodeInternal, "", cause)
}

// statusText strips the numeric prefix net/http puts in Response.Status.
func statusText(status string, code int) string {
	if text := strings.TrimSpace(strings.TrimPrefix(status, fmt.Sprintf("%d", code))); text != "" {
		return text
	}
	return httpclient.StatusText(code)
}

func multipartFile(mimeType, filename string, data []byte) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write multipart part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
