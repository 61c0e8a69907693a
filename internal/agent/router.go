package agent

import (
	"errors"

	"github.com/oddstream/oddstream-agent/pkg/types"
)

// validateOrders rejects a malformed request before any network effect.
func validateOrders(orders []types.Order) error {
	if len(orders) == 0 {
		return errors.New("batch must contain at least one order")
	}
	for i, o := range orders {
		if err := o.Validate(); err != nil {
			return &types.OrderValidationError{Index: i, Err: err}
		}
	}
	return nil
}

// distinctMarkets returns the market ids referenced by orders, first
// appearance first, each id once.
func distinctMarkets(orders []types.Order) []string {
	seen := make(map[string]struct{}, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.MarketID]; ok {
			continue
		}
		seen[o.MarketID] = struct{}{}
		ids = append(ids, o.MarketID)
	}
	return ids
}

// buildBatches groups orders by destination chain. Orders keep their caller
// order within each batch, and batches appear in the order their
// destination first appears in the request. Nonces are assigned by the
// caller afterwards, one per batch.
func buildBatches(orders []types.Order, resolved map[string]string, origin string) []types.Batch {
	index := make(map[string]int, len(resolved))
	batches := make([]types.Batch, 0, len(resolved))

	for _, o := range orders {
		dest := resolved[o.MarketID]
		i, ok := index[dest]
		if !ok {
			i = len(batches)
			index[dest] = i
			batches = append(batches, types.Batch{
				Destination: dest,
				Origin:      origin,
			})
		}
		batches[i].Orders = append(batches[i].Orders, o)
	}

	return batches
}
