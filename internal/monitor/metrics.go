package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// TxCount reports the node's cumulative transaction count.
	TxCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oddstream_monitor_tx_count",
		Help: "Cumulative transaction count reported by the node",
	})

	// BlockTimeSeconds reports the node's average block time.
	BlockTimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oddstream_monitor_block_time_seconds",
		Help: "Average block time reported by the node",
	})

	// ActiveApplications reports how many applications the node runs.
	ActiveApplications = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oddstream_monitor_active_applications",
		Help: "Number of active applications reported by the node",
	})

	// PollErrorsTotal counts failed stats polls.
	PollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddstream_monitor_poll_errors_total",
		Help: "Total number of failed node stats polls",
	})

	// PollDuration observes stats poll latency.
	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddstream_monitor_poll_duration_seconds",
		Help:    "Duration of node stats polls",
		Buckets: prometheus.DefBuckets,
	})

	// LastPollTimestamp records the unix time of the last successful poll.
	LastPollTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oddstream_monitor_last_poll_timestamp",
		Help: "Unix timestamp of the last successful stats poll",
	})
)
