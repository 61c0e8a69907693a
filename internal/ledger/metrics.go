package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RequestsTotal counts GraphQL requests by operation and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddstream_ledger_requests_total",
			Help: "Total number of node GraphQL requests",
		},
		[]string{"operation", "status"},
	)

	// RequestDuration observes GraphQL request latency by operation.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oddstream_ledger_request_duration_seconds",
			Help:    "Node GraphQL request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// WSMessagesTotal counts frames received on the websocket stream.
	WSMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_ledger_ws_messages_total",
			Help: "Total number of websocket frames received",
		},
	)

	// WSReconnectsTotal counts websocket reconnect attempts.
	WSReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_ledger_ws_reconnects_total",
			Help: "Total number of websocket reconnects",
		},
	)

	// WSDroppedUpdatesTotal counts updates dropped due to a full buffer.
	WSDroppedUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_ledger_ws_dropped_updates_total",
			Help: "Total number of market updates dropped",
		},
	)

	// WSConnectedGauge reports whether the websocket is currently connected.
	WSConnectedGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "oddstream_ledger_ws_connected",
			Help: "Whether the websocket subscription is connected (1 or 0)",
		},
	)
)
