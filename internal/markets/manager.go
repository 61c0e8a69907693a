// Package markets holds the latest streamed state of every market the
// agent watches. The manager consumes the subscriber's update channel and
// keeps one snapshot per market for the status API and the watch command;
// the quoting loop reads odds per cycle from the node directly.
package markets

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/pkg/types"
)

// Manager maintains the last known update per market.
type Manager struct {
	snapshots map[string]types.MarketUpdate
	mu        sync.RWMutex
	logger    *zap.Logger
	updates   <-chan types.MarketUpdate
	ctx       context.Context
	wg        sync.WaitGroup
}

// Config holds state manager configuration.
type Config struct {
	Logger  *zap.Logger
	Updates <-chan types.MarketUpdate
}

// New creates a market state manager.
func New(cfg *Config) *Manager {
	return &Manager{
		snapshots: make(map[string]types.MarketUpdate),
		logger:    cfg.Logger,
		updates:   cfg.Updates,
	}
}

// Start begins consuming the update channel.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx = ctx
	m.logger.Info("market-state-manager-starting")

	m.wg.Add(1)
	go m.consume()

	return nil
}

// consume applies incoming updates until the channel closes or the context
// ends.
func (m *Manager) consume() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Info("market-state-manager-stopping")
			return
		case update, ok := <-m.updates:
			if !ok {
				m.logger.Info("update-channel-closed")
				return
			}
			m.apply(update)
		}
	}
}

// apply stores one update. Updates older than the stored snapshot are
// dropped; reconnects can replay frames out of order.
func (m *Manager) apply(update types.MarketUpdate) {
	UpdatesTotal.Inc()

	m.mu.Lock()
	existing, exists := m.snapshots[update.MarketID]
	if exists && update.Timestamp.Before(existing.Timestamp) {
		m.mu.Unlock()
		StaleDroppedTotal.Inc()
		m.logger.Debug("stale-update-dropped",
			zap.String("market-id", update.MarketID),
			zap.Time("update-time", update.Timestamp),
			zap.Time("snapshot-time", existing.Timestamp))
		return
	}
	m.snapshots[update.MarketID] = update
	MarketsTracked.Set(float64(len(m.snapshots)))
	m.mu.Unlock()

	m.logger.Debug("market-state-updated",
		zap.String("market-id", update.MarketID),
		zap.Float64("yes-odds", update.YesOdds),
		zap.Float64("no-odds", update.NoOdds))
}

// GetSnapshot returns the last update seen for a market.
func (m *Manager) GetSnapshot(marketID string) (types.MarketUpdate, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot, exists := m.snapshots[marketID]
	return snapshot, exists
}

// Snapshots returns a copy of every tracked market's last update.
func (m *Manager) Snapshots() map[string]types.MarketUpdate {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshots := make(map[string]types.MarketUpdate, len(m.snapshots))
	for id, snapshot := range m.snapshots {
		snapshots[id] = snapshot
	}
	return snapshots
}

// Close waits for the consume loop to drain.
func (m *Manager) Close() error {
	m.wg.Wait()
	m.logger.Info("market-state-manager-closed")
	return nil
}
