package markets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// UpdatesTotal counts streamed market updates received.
	UpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_markets_updates_total",
			Help: "Total number of market updates received",
		},
	)

	// StaleDroppedTotal counts updates dropped for being older than the
	// stored snapshot.
	StaleDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_markets_stale_dropped_total",
			Help: "Total number of out-of-order market updates dropped",
		},
	)

	// MarketsTracked reports how many markets have a snapshot in memory.
	MarketsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "oddstream_markets_tracked",
			Help: "Number of markets with a state snapshot in memory",
		},
	)
)
