package marketmaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// CyclesTotal counts quote cycles by result.
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddstream_maker_cycles_total",
			Help: "Total number of quote cycles",
		},
		[]string{"result"},
	)

	// PairsSubmittedTotal counts successfully dispatched quote pairs.
	PairsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_maker_pairs_submitted_total",
			Help: "Total number of quote pairs submitted",
		},
	)

	// ActiveMakers tracks running per-market quote loops.
	ActiveMakers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "oddstream_maker_active_loops",
			Help: "Number of market quoting loops currently running",
		},
	)
)
