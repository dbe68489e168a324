// Package testutil provides an httptest-based mock REST server for backend
// and integration tests.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// MockResponse defines how the mock server answers one path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// RecordedRequest is a request received by the mock server.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
	Header   http.Header
	Body     []byte
	Username string
	Password string

	// Set for multipart/form-data requests carrying a "file" field.
	FileName        string
	FileContentType string
	FileData        []byte
}

// MockServer is a configurable REST server that records every request.
type MockServer struct {
	server *httptest.Server

	mu        sync.RWMutex
	responses map[string]MockResponse
	handlers  map[string]http.HandlerFunc
	requests  []RecordedRequest
}

// NewMockServer starts a mock server. Unconfigured paths answer 200 with
// {"status":"ok"}.
func NewMockServer() *MockServer {
	m := &MockServer{
		responses: make(map[string]MockResponse),
		handlers:  make(map[string]http.HandlerFunc),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the server's base URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// Close shuts down the server.
func (m *MockServer) Close() {
	m.server.Close()
}

// SetResponse configures a fixed response for path.
func (m *MockServer) SetResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = resp
}

// SetHandler configures a custom handler for path. Requests are still
// recorded.
func (m *MockServer) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// Requests returns a copy of all recorded requests.
func (m *MockServer) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of recorded requests.
func (m *MockServer) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// LastRequest returns the most recent request. It panics when none was
// received.
func (m *MockServer) LastRequest() RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		panic("mock server received no requests")
	}
	return m.requests[len(m.requests)-1]
}

func (m *MockServer) serve(w http.ResponseWriter, r *http.Request) {
	rec, err := record(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.requests = append(m.requests, rec)
	handler, hasHandler := m.handlers[r.URL.Path]
	resp, hasResp := m.responses[r.URL.Path]
	m.mu.Unlock()

	switch {
	case hasHandler:
		handler(w, r)
	case hasResp:
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			_, _ = io.WriteString(w, resp.Body)
		}
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}
}

func record(r *http.Request) (RecordedRequest, error) {
	rec := RecordedRequest{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Query:    r.URL.Query(),
		Header:   r.Header.Clone(),
	}
	rec.Username, rec.Password, _ = r.BasicAuth()

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return rec, fmt.Errorf("parse multipart form: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return rec, fmt.Errorf("read file part: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return rec, fmt.Errorf("read file data: %w", err)
		}
		rec.FileName = header.Filename
		rec.FileContentType = header.Header.Get("Content-Type")
		rec.FileData = data
		return rec, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return rec, fmt.Errorf("read body: %w", err)
	}
	rec.Body = body
	return rec, nil
}

// NewJSONResponse creates a 200 response with a JSON body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewErrorResponse creates an error response with a JSON body.
func NewErrorResponse(statusCode int, body string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewPagedHandler serves items as a JSON array page selected by the
// offsetParam and sizeParam query parameters.
func NewPagedHandler(items []string, offsetParam, sizeParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset := atoiOr(r.URL.Query().Get(offsetParam), 0)
		size := atoiOr(r.URL.Query().Get(sizeParam), len(items))

		page := make([]string, 0, size)
		for i := offset; i < offset+size && i < len(items); i++ {
			page = append(page, fmt.Sprintf("%q", items[i]))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "["+strings.Join(page, ",")+"]")
	}
}

func atoiOr(s string, def int) int {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return def
	}
	return n
}
