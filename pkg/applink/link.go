package applink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ApplicationLink is a configured link to a remote application. The link
// owns authentication; requests it creates are already signed.
type ApplicationLink interface {
	CreateAuthenticatedRequestFactory() RequestFactory
}

// RequestFactory creates and executes authenticated requests.
type RequestFactory interface {
	// CreateRequest builds a request for url, which is resolved against the
	// linked application's base URL unless it is absolute.
	CreateRequest(ctx context.Context, method MethodType, url string, body io.Reader) (*http.Request, error)

	// Execute sends req. A non-nil error means no response was received.
	Execute(req *http.Request) (*http.Response, error)
}

// DefaultTimeout is the request timeout of links created by this package.
const DefaultTimeout = 30 * time.Second

// Link is an ApplicationLink backed by one *http.Client. It is its own
// request factory.
type Link struct {
	baseURL    string
	httpClient *http.Client
	authorize  func(*http.Request)
}

// NewLink creates a link to baseURL that sends requests through httpClient
// without adding credentials. httpClient must already authenticate, for
// example through its transport.
func NewLink(baseURL string, httpClient *http.Client) (*Link, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Link{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// NewBasicAuthLink creates a link that signs every request with HTTP Basic
// credentials.
func NewBasicAuthLink(baseURL, username, password string) (*Link, error) {
	link, err := NewLink(baseURL, nil)
	if err != nil {
		return nil, err
	}
	link.authorize = func(req *http.Request) {
		req.SetBasicAuth(username, password)
	}
	return link, nil
}

// NewOAuth2Link creates a link that authenticates with tokens from ts.
func NewOAuth2Link(baseURL string, ts oauth2.TokenSource) (*Link, error) {
	if ts == nil {
		return nil, fmt.Errorf("token source is required")
	}
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = DefaultTimeout
	return NewLink(baseURL, httpClient)
}

// CreateAuthenticatedRequestFactory implements ApplicationLink.
func (l *Link) CreateAuthenticatedRequestFactory() RequestFactory {
	return l
}

// CreateRequest implements RequestFactory.
func (l *Link) CreateRequest(ctx context.Context, method MethodType, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, string(method), l.resolve(url), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if l.authorize != nil {
		l.authorize(req)
	}
	return req, nil
}

// Execute implements RequestFactory.
func (l *Link) Execute(req *http.Request) (*http.Response, error) {
	return l.httpClient.Do(req)
}

// BaseURL returns the linked application's base URL.
func (l *Link) BaseURL() string {
	return l.baseURL
}

func (l *Link) resolve(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return l.baseURL + "/" + strings.TrimLeft(url, "/")
}
