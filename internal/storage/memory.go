package storage

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryNonceStore keeps per-origin counters in memory. Counters are lost
// on process exit, so this store is only safe for processes that claim a
// fresh origin chain at startup. Use PostgresNonceStore when an origin
// outlives the process.
type MemoryNonceStore struct {
	mu       sync.Mutex
	counters map[string]uint64
	logger   *zap.Logger
}

// NewMemoryNonceStore creates an in-memory nonce store.
func NewMemoryNonceStore(logger *zap.Logger) *MemoryNonceStore {
	logger.Info("memory-nonce-store-initialized")
	return &MemoryNonceStore{
		counters: make(map[string]uint64),
		logger:   logger,
	}
}

// Next allocates the next nonce for origin, starting at 1.
func (m *MemoryNonceStore) Next(ctx context.Context, origin string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[origin]++
	return m.counters[origin], nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryNonceStore) Close() error {
	m.logger.Info("closing-memory-nonce-store")
	return nil
}
