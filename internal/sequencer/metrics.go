package sequencer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// NoncesIssuedTotal counts nonces handed out across all origins.
	NoncesIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddstream_sequencer_nonces_issued_total",
			Help: "Total number of nonces issued",
		},
	)

	// LastNonceGauge reports the most recently issued nonce per origin.
	LastNonceGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "oddstream_sequencer_last_nonce",
			Help: "Last nonce issued for an origin chain",
		},
		[]string{"origin"},
	)
)
