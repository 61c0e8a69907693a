package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// TripsTotal counts transitions into the open state.
	TripsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_breaker_trips_total",
			Help: "Total number of breaker trips",
		},
	)

	// SuppressedTotal counts submissions refused by an open breaker.
	SuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_breaker_suppressed_total",
			Help: "Total number of suppressed submissions",
		},
	)

	// OpenMarkets tracks how many markets are currently open or half-open.
	OpenMarkets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "oddstream_breaker_open_markets",
			Help: "Number of markets with an open breaker",
		},
	)
)
