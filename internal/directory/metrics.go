package directory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// CacheHitsTotal counts resolutions served from the cache.
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_directory_cache_hits_total",
			Help: "Total number of market resolutions served from cache",
		},
	)

	// CacheMissesTotal counts resolutions that had to hit the registry.
	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_directory_cache_misses_total",
			Help: "Total number of market resolutions not found in cache",
		},
	)

	// LookupFailuresTotal counts registry lookups that returned an error.
	LookupFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_directory_lookup_failures_total",
			Help: "Total number of failed registry lookups",
		},
	)
)
