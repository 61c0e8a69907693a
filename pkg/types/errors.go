package types

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when an operation requiring the agent's user
// chain is invoked before initialization has completed. The call fails before
// any network effect.
var ErrNotInitialized = errors.New("agent not initialized: user chain id not assigned")

// UnknownMarketError indicates the registry has no chain mapping for a
// market. Routing aborts atomically when any order hits this.
type UnknownMarketError struct {
	MarketID string
}

func (e *UnknownMarketError) Error() string {
	return fmt.Sprintf("unknown market %q: no chain mapping in registry", e.MarketID)
}

// RegistryUnavailableError indicates the registry could not be queried at
// all. Treated as transient; no retry is performed here.
type RegistryUnavailableError struct {
	Err error
}

func (e *RegistryUnavailableError) Error() string {
	return fmt.Sprintf("registry unavailable: %v", e.Err)
}

func (e *RegistryUnavailableError) Unwrap() error {
	return e.Err
}

// DispatchError is the per-batch failure reported by the dispatcher.
// It never affects sibling batches.
type DispatchError struct {
	Destination string
	Nonce       uint64
	Err         error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch to chain %s failed (nonce %d): %v", e.Destination, e.Nonce, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// OrderValidationError rejects one malformed order before routing begins.
// Index is the order's position in the submitted slice.
type OrderValidationError struct {
	Index int
	Err   error
}

func (e *OrderValidationError) Error() string {
	return fmt.Sprintf("order %d invalid: %v", e.Index, e.Err)
}

func (e *OrderValidationError) Unwrap() error {
	return e.Err
}
