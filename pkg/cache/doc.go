// Package cache provides an opt-in Redis response cache for any
// httpclient.BaseHTTPClient.
//
// The cache is a decorator. It is never enabled implicitly; callers wrap a
// backend explicitly:
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	backend, _ := basicauth.New(basicauth.DefaultConfig(url, user, pass))
//	client := cache.NewClient(backend, rdb, cache.DefaultConfig())
//
// Only GET ExecuteRestCall calls without body or custom headers are cached, and only
// when the backend returned a 2xx response. Downloads and uploads always pass
// through. A Redis failure never fails a call: it is logged, counted, and the
// request goes to the wrapped backend.
//
// # Keys
//
// Keys are deterministic: prefix, method and path joined by ":", followed by
// the sorted, query-escaped parameters.
//
//	httpc:GET:rest/api/2/issue/TEST-1?expand=names
//
// # Metrics
//
//   - http_client_cache_hits_total
//   - http_client_cache_misses_total
//   - http_client_cache_errors_total{operation} - get, set, delete
package cache
