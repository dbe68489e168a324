// Package httpclient defines the minimal transport contract shared by every
// HTTP backend and layers typed JSON decoding on top of it.
package httpclient

import (
	"context"
	"net/http"
	"strconv"
)

// Content types used by the backends.
const (
	ContentTypeJSON = "application/json"
)

// HTTPResponse pairs a status code with a raw or decoded payload.
type HTTPResponse[T any] struct {
	StatusCode int
	Body       T
}

// BaseHTTPClient is the transport contract implemented by each backend.
//
// An empty body means no body is sent; contentType is only applied when a
// body is present. params are appended to the path as an encoded query
// string (see EncodeParams). Every failure is returned as a
// *domainerr.DomainError or *domainerr.ResponseError; which HTTP statuses
// count as failures is defined per backend.
type BaseHTTPClient interface {
	// ExecuteRestCall issues one request and returns the body as text.
	ExecuteRestCall(ctx context.Context, method, path string, params Params, body, contentType string, headers map[string]string) (HTTPResponse[string], error)

	// ExecuteDownload issues one request and returns the body as bytes.
	ExecuteDownload(ctx context.Context, method, url string, params Params, body, contentType string) (HTTPResponse[[]byte], error)

	// ExecuteUpload sends data as a multipart file upload. On success the
	// returned body is the uploaded data itself, not the server response.
	ExecuteUpload(ctx context.Context, method, url string, params Params, mimeType, filename string, data []byte) (HTTPResponse[[]byte], error)
}

// IsSuccess reports whether statusCode is in the 2xx range.
func IsSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

// StatusText returns the reason phrase for statusCode, falling back to the
// numeric code for unknown statuses.
func StatusText(statusCode int) string {
	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return strconv.Itoa(statusCode)
}
