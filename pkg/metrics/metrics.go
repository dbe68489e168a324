// Package metrics provides the Prometheus registry used by the HTTP client
// packages and an HTTP handler exposing it.
// All metrics are defined in their respective packages (httpclient, cache)
// to maintain modularity and avoid circular dependencies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client packages.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads the metrics registered through Registry.
var Gatherer = prometheus.DefaultGatherer

// Names lists every metric family exported by this module.
var Names = []string{
	"http_client_requests_total",
	"http_client_request_duration_seconds",
	"http_client_errors_total",
	"http_client_cache_hits_total",
	"http_client_cache_misses_total",
	"http_client_cache_errors_total",
}

// Handler returns an http.Handler serving Gatherer in the Prometheus
// exposition format. Scrapes of the handler are counted in Registry as
// promhttp_metric_handler_requests_total.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		Registry,
		promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{Registry: Registry}),
	)
}

// Metrics Documentation
//
// Request Metrics (pkg/httpclient, recorded by every backend):
//   - http_client_requests_total{backend, method, status} (Counter): Requests by backend, method and HTTP status ("transport_error" without response)
//   - http_client_request_duration_seconds{backend, method} (Histogram): Request duration
//   - http_client_errors_total{backend, code} (Counter): Domain errors by code
//
// Cache Metrics (pkg/cache):
//   - http_client_cache_hits_total (Counter): Responses served from Redis
//   - http_client_cache_misses_total (Counter): Cacheable calls not in Redis
//   - http_client_cache_errors_total{operation} (Counter): Redis failures
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(http_client_cache_hits_total[5m])) /
//   (sum(rate(http_client_cache_hits_total[5m])) + sum(rate(http_client_cache_misses_total[5m])))
//
//   # Interface error rate (backend A)
//   rate(http_client_errors_total{code="Schnittstellen-Fehler"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(http_client_request_duration_seconds_bucket[5m]))
