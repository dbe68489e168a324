package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/linked-planet/go-http-client/pkg/domainerr"
)

// ExecuteRest calls ExecuteRestCall and decodes the JSON body into T.
// An empty or "null" body yields a nil result.
func ExecuteRest[T any](ctx context.Context, c BaseHTTPClient, method, path string, params Params, body, contentType string) (HTTPResponse[*T], error) {
	resp, err := c.ExecuteRestCall(ctx, method, path, params, body, contentType, nil)
	if err != nil {
		return HTTPResponse[*T]{}, err
	}
	return decodeResponse[*T](resp, decodeValue[T])
}

// ExecuteRestList is ExecuteRest for JSON array bodies.
func ExecuteRestList[T any](ctx context.Context, c BaseHTTPClient, method, path string, params Params, body, contentType string) (HTTPResponse[[]T], error) {
	resp, err := c.ExecuteRestCall(ctx, method, path, params, body, contentType, nil)
	if err != nil {
		return HTTPResponse[[]T]{}, err
	}
	return decodeResponse[[]T](resp, decodeList[T])
}

// ExecuteGet issues a GET without body and decodes the JSON body into T.
func ExecuteGet[T any](ctx context.Context, c BaseHTTPClient, path string, params Params) (HTTPResponse[*T], error) {
	resp, err := ExecuteGetCall(ctx, c, path, params)
	if err != nil {
		return HTTPResponse[*T]{}, err
	}
	return decodeResponse[*T](resp, decodeValue[T])
}

// ExecuteGetReturnList issues a GET without body and decodes a JSON array.
func ExecuteGetReturnList[T any](ctx context.Context, c BaseHTTPClient, path string, params Params) (HTTPResponse[[]T], error) {
	resp, err := ExecuteGetCall(ctx, c, path, params)
	if err != nil {
		return HTTPResponse[[]T]{}, err
	}
	return decodeResponse[[]T](resp, decodeList[T])
}

// ExecuteGetCall issues a GET with no body and no custom headers.
func ExecuteGetCall(ctx context.Context, c BaseHTTPClient, path string, params Params) (HTTPResponse[string], error) {
	return c.ExecuteRestCall(ctx, http.MethodGet, path, params, "", "", nil)
}

func decodeResponse[R any](resp HTTPResponse[string], decode func(string) (R, error)) (HTTPResponse[R], error) {
	value, err := decode(resp.Body)
	if err != nil {
		return HTTPResponse[R]{}, err
	}
	return HTTPResponse[R]{StatusCode: resp.StatusCode, Body: value}, nil
}

func decodeValue[T any](body string) (*T, error) {
	if isNullBody(body) {
		return nil, nil
	}
	var value T
	if err := json.Unmarshal([]byte(body), &value); err != nil {
		return nil, domainerr.Wrap(domainerr.CodeJSON, "decode response body", err)
	}
	return &value, nil
}

func decodeList[T any](body string) ([]T, error) {
	if isNullBody(body) {
		return nil, nil
	}
	var values []T
	if err := json.Unmarshal([]byte(body), &values); err != nil {
		return nil, domainerr.Wrap(domainerr.CodeJSON, "decode response list", err)
	}
	return values, nil
}

func isNullBody(body string) bool {
	trimmed := strings.TrimSpace(body)
	return trimmed == "" || trimmed == "null"
}
