package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts responses served from Redis
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_client_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	// CacheMisses counts cacheable calls not found in Redis
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_client_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_client_cache_errors_total",
			Help: "Total number of response cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
