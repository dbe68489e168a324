//go:build integration

package integration

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/linked-planet/go-http-client/internal/testutil"
	"github.com/linked-planet/go-http-client/pkg/applink"
	"github.com/linked-planet/go-http-client/pkg/basicauth"
	"github.com/linked-planet/go-http-client/pkg/cache"
	"github.com/linked-planet/go-http-client/pkg/domainerr"
	"github.com/linked-planet/go-http-client/pkg/httpclient"
	"github.com/linked-planet/go-http-client/pkg/pagination"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// testTransport redirects requests for jira.example.com to the mock server.
type testTransport struct {
	mockServer *testutil.MockServer
}

func (t *testTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	if req.URL.Host == "jira.example.com" {
		req.URL.Host = strings.TrimPrefix(t.mockServer.URL(), "http://")
	}
	return http.DefaultTransport.RoundTrip(req)
}

func newBasicClient(t *testing.T, mock *testutil.MockServer) *basicauth.Client {
	t.Helper()

	cfg := basicauth.DefaultConfig("http://jira.example.com", "admin", "admin")
	cfg.Transport = &testTransport{mockServer: mock}

	client, err := basicauth.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

// TestCachedRequestFlow tests Cache miss → Backend → Cache write → Cache hit.
func TestCachedRequestFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/rest/api/2/issue/TEST-1", testutil.NewJSONResponse(`{"key":"TEST-1","fields":{"summary":"First"}}`))

	client := cache.NewClient(newBasicClient(t, mock), redisClient, cache.DefaultConfig())
	ctx := context.Background()

	type issue struct {
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
		} `json:"fields"`
	}

	for i := 0; i < 3; i++ {
		resp, err := httpclient.ExecuteGet[issue](ctx, client, "rest/api/2/issue/TEST-1", httpclient.Params{"fields": "summary"})
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if resp.Body == nil || resp.Body.Fields.Summary != "First" {
			t.Errorf("call %d: unexpected body %+v", i, resp.Body)
		}
	}

	if got := mock.RequestCount(); got != 1 {
		t.Errorf("Expected 1 backend request, got %d", got)
	}

	keys, err := redisClient.Keys(ctx, "httpc:GET:*").Result()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "httpc:GET:rest/api/2/issue/TEST-1?fields=summary" {
		t.Errorf("Unexpected cache keys: %v", keys)
	}
}

// TestCacheExpiration tests that entries are dropped after their TTL.
func TestCacheExpiration(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockServer()
	defer mock.Close()

	cfg := cache.DefaultConfig()
	cfg.TTL = time.Second
	client := cache.NewClient(newBasicClient(t, mock), redisClient, cfg)
	ctx := context.Background()

	if _, err := httpclient.ExecuteGetCall(ctx, client, "rest/api/2/myself", nil); err != nil {
		t.Fatal(err)
	}
	time.Sleep(1500 * time.Millisecond)
	if _, err := httpclient.ExecuteGetCall(ctx, client, "rest/api/2/myself", nil); err != nil {
		t.Fatal(err)
	}

	if got := mock.RequestCount(); got != 2 {
		t.Errorf("Expected 2 backend requests after expiry, got %d", got)
	}
}

// TestCacheSkipsFailedResponses tests that interface errors from backend A
// are never cached.
func TestCacheSkipsFailedResponses(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/rest/api/2/issue/NOPE-1", testutil.NewErrorResponse(http.StatusNotFound, `{"errorMessages":["Issue does not exist"]}`))

	link, err := applink.NewBasicAuthLink(mock.URL(), "admin", "admin")
	if err != nil {
		t.Fatal(err)
	}
	backend, err := applink.New(link)
	if err != nil {
		t.Fatal(err)
	}
	client := cache.NewClient(backend, redisClient, cache.DefaultConfig())

	for i := 0; i < 2; i++ {
		_, err := httpclient.ExecuteGetCall(context.Background(), client, "rest/api/2/issue/NOPE-1", nil)
		if !domainerr.IsResponseError(err) {
			t.Fatalf("call %d: expected ResponseError, got %v", i, err)
		}
	}
	if got := mock.RequestCount(); got != 2 {
		t.Errorf("Expected 2 backend requests, got %d", got)
	}
}

// TestPaginationThroughCache tests a paginated fetch where every page is
// cached.
func TestPaginationThroughCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockServer()
	defer mock.Close()
	mock.SetHandler("/rest/api/2/user/search", testutil.NewPagedHandler([]string{"admin", "alice", "bob"}, "startAt", "maxResults"))

	client := cache.NewClient(newBasicClient(t, mock), redisClient, cache.DefaultConfig())

	fetch := func(ctx context.Context, offset, pageSize int) ([]string, error) {
		resp, err := httpclient.ExecuteGetReturnList[string](ctx, client, "rest/api/2/user/search", httpclient.Params{
			"startAt":    strconv.Itoa(offset),
			"maxResults": strconv.Itoa(pageSize),
		})
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}

	for run := 0; run < 2; run++ {
		users, err := pagination.FetchAll(context.Background(), fetch)
		if err != nil {
			t.Fatalf("run %d failed: %v", run, err)
		}
		if strings.Join(users, ",") != "admin,alice,bob" {
			t.Errorf("run %d: got %v", run, users)
		}
	}

	// 4 pages on the first run, none on the second
	if got := mock.RequestCount(); got != 4 {
		t.Errorf("Expected 4 backend requests, got %d", got)
	}
}

// TestMetricsIncremented tests that cache hits and misses are counted.
func TestMetricsIncremented(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockServer()
	defer mock.Close()

	client := cache.NewClient(newBasicClient(t, mock), redisClient, cache.DefaultConfig())
	ctx := context.Background()

	hits := promtestutil.ToFloat64(cache.CacheHits)
	misses := promtestutil.ToFloat64(cache.CacheMisses)

	for i := 0; i < 2; i++ {
		if _, err := httpclient.ExecuteGetCall(ctx, client, "rest/api/2/serverInfo", nil); err != nil {
			t.Fatal(err)
		}
	}

	if got := promtestutil.ToFloat64(cache.CacheHits) - hits; got != 1 {
		t.Errorf("Expected 1 cache hit, got %v", got)
	}
	if got := promtestutil.ToFloat64(cache.CacheMisses) - misses; got != 1 {
		t.Errorf("Expected 1 cache miss, got %v", got)
	}
}
