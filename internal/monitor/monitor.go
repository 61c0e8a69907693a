// Package monitor periodically polls node statistics and publishes them as
// Prometheus gauges.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/internal/ledger"
)

// StatsReader queries node statistics.
type StatsReader interface {
	Stats(ctx context.Context) (ledger.NodeStats, error)
}

// Monitor polls the node on a fixed interval and updates metrics.
type Monitor struct {
	client       StatsReader
	pollInterval time.Duration
	logger       *zap.Logger
}

// Config holds monitor configuration.
type Config struct {
	Client       StatsReader
	PollInterval time.Duration
	Logger       *zap.Logger
}

// New creates a node monitor.
func New(cfg *Config) (*Monitor, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Client == nil {
		return nil, errors.New("client cannot be nil")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Monitor{
		client:       cfg.Client,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
	}, nil
}

// Run starts the polling loop (blocking).
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("node-monitor-starting",
		zap.Duration("poll-interval", m.pollInterval))

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	// Initial poll
	err := m.poll(ctx)
	if err != nil {
		m.logger.Error("initial-poll-failed", zap.Error(err))
		PollErrorsTotal.Inc()
	}

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("node-monitor-stopping")
			return ctx.Err()
		case <-ticker.C:
			err = m.poll(ctx)
			if err != nil {
				m.logger.Error("poll-failed", zap.Error(err))
				PollErrorsTotal.Inc()
			}
		}
	}
}

// poll performs a single polling cycle.
func (m *Monitor) poll(ctx context.Context) error {
	start := time.Now()
	defer func() {
		PollDuration.Observe(time.Since(start).Seconds())
	}()

	statsCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	stats, err := m.client.Stats(statsCtx)
	if err != nil {
		return fmt.Errorf("query node stats: %w", err)
	}

	m.updateMetrics(stats)
	LastPollTimestamp.Set(float64(time.Now().Unix()))

	m.logger.Debug("poll-complete",
		zap.Int64("tx-count", stats.TxCount),
		zap.Float64("block-time", stats.BlockTime),
		zap.Int("active-applications", stats.ActiveApplications),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// updateMetrics publishes the latest stats snapshot.
func (m *Monitor) updateMetrics(stats ledger.NodeStats) {
	TxCount.Set(float64(stats.TxCount))
	BlockTimeSeconds.Set(stats.BlockTime)
	ActiveApplications.Set(float64(stats.ActiveApplications))
}
