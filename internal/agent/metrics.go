package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// OrdersRoutedTotal counts orders accepted into the routing pipeline.
	OrdersRoutedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_agent_orders_routed_total",
			Help: "Total number of orders routed into batches",
		},
	)

	// BatchesDispatchedTotal counts dispatched batches by result.
	BatchesDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddstream_agent_batches_dispatched_total",
			Help: "Total number of batches dispatched",
		},
		[]string{"status"},
	)

	// DispatchDurationSeconds observes per-batch send latency.
	DispatchDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oddstream_agent_dispatch_duration_seconds",
			Help:    "Batch dispatch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ActiveDispatches tracks sends currently in flight.
	ActiveDispatches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "oddstream_agent_active_dispatches",
			Help: "Number of batch sends currently in flight",
		},
	)
)
