package httpclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics shared by all backends.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_client_requests_total",
		Help: "Total HTTP client requests by backend, method and status",
	}, []string{"backend", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_client_request_duration_seconds",
		Help:    "HTTP client request duration in seconds by backend and method",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"backend", "method"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_client_errors_total",
		Help: "Total HTTP client domain errors by backend and code",
	}, []string{"backend", "code"})
)

// StatusTransportError is the status label recorded when no response was
// received.
const StatusTransportError = "transport_error"

// Observe records one completed exchange. statusCode 0 means the request
// failed before a response arrived.
func Observe(backend, method string, statusCode int, start time.Time) {
	status := StatusTransportError
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	requestsTotal.WithLabelValues(backend, method, status).Inc()
	requestDuration.WithLabelValues(backend, method).Observe(time.Since(start).Seconds())
}

// ObserveError records a domain error produced by a backend.
func ObserveError(backend, code string) {
	errorsTotal.WithLabelValues(backend, code).Inc()
}
