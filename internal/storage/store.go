package storage

import (
	"context"
)

// NonceStore is the interface for allocating per-origin nonces. Every call
// returns a value strictly greater than all values previously returned for
// the same origin.
type NonceStore interface {
	// Next allocates the next nonce for an origin chain.
	Next(ctx context.Context, origin string) (uint64, error)

	// Close releases the store.
	Close() error
}
