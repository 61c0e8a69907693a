package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// MarketsSeenTotal counts catalog entries returned across all polls.
	MarketsSeenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_discovery_markets_seen_total",
			Help: "Total number of markets returned by catalog polls",
		},
	)

	// NewMarketsTotal counts markets handed to the app for quoting.
	NewMarketsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_discovery_new_markets_total",
			Help: "Total number of newly discovered markets",
		},
	)

	// PollDurationSeconds observes catalog poll latency.
	PollDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oddstream_discovery_poll_duration_seconds",
			Help:    "Duration of node catalog polls",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PollErrorsTotal counts failed catalog polls.
	PollErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_discovery_poll_errors_total",
			Help: "Total number of failed catalog polls",
		},
	)

	// TrackedMarkets reports how many markets discovery is tracking.
	TrackedMarkets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "oddstream_discovery_tracked_markets",
			Help: "Number of markets currently tracked by discovery",
		},
	)
)
