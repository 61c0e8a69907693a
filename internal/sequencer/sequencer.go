// Package sequencer issues the per-origin nonces attached to outgoing
// batches. Values handed out for one origin are strictly increasing and
// contiguous; destinations use them to deduplicate and order messages.
package sequencer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Store allocates persistent per-origin counters.
type Store interface {
	// Next allocates the next nonce for an origin chain.
	Next(ctx context.Context, origin string) (uint64, error)

	// Close releases the store.
	Close() error
}

// Sequencer hands out nonces for outgoing batches. It has a single owner;
// all allocation goes through it so no two batches from one origin can ever
// carry the same value.
type Sequencer struct {
	store  Store
	logger *zap.Logger
}

// New creates a sequencer backed by store.
func New(store Store, logger *zap.Logger) (*Sequencer, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Sequencer{
		store:  store,
		logger: logger,
	}, nil
}

// Next allocates the next nonce for origin.
func (s *Sequencer) Next(ctx context.Context, origin string) (uint64, error) {
	if origin == "" {
		return 0, errors.New("origin cannot be empty")
	}

	nonce, err := s.store.Next(ctx, origin)
	if err != nil {
		return 0, fmt.Errorf("next nonce: %w", err)
	}

	NoncesIssuedTotal.Inc()
	LastNonceGauge.WithLabelValues(origin).Set(float64(nonce))

	return nonce, nil
}

// Close releases the backing store.
func (s *Sequencer) Close() error {
	return s.store.Close()
}
