package agent

import (
	"errors"
	"testing"

	"github.com/oddstream/oddstream-agent/pkg/types"
)

func TestValidateOrders(t *testing.T) {
	tests := []struct {
		name      string
		orders    []types.Order
		wantErr   bool
		wantIndex int
	}{
		{
			name:    "empty-slice",
			orders:  nil,
			wantErr: true,
		},
		{
			name: "valid-orders",
			orders: []types.Order{
				{MarketID: "market-a", Side: types.SideYes, Amount: 10},
				{MarketID: "market-b", Side: types.SideNo, Amount: 5},
			},
		},
		{
			name: "invalid-second-order",
			orders: []types.Order{
				{MarketID: "market-a", Side: types.SideYes, Amount: 10},
				{MarketID: "market-b", Side: "MAYBE", Amount: 5},
			},
			wantErr:   true,
			wantIndex: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOrders(tt.orders)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var ve *types.OrderValidationError
			if errors.As(err, &ve) && ve.Index != tt.wantIndex {
				t.Errorf("expected failing index %d, got %d", tt.wantIndex, ve.Index)
			}
		})
	}
}

func TestDistinctMarkets(t *testing.T) {
	orders := []types.Order{
		{MarketID: "market-b", Side: types.SideYes, Amount: 1},
		{MarketID: "market-a", Side: types.SideNo, Amount: 1},
		{MarketID: "market-b", Side: types.SideNo, Amount: 1},
		{MarketID: "market-c", Side: types.SideYes, Amount: 1},
	}

	ids := distinctMarkets(orders)

	want := []string{"market-b", "market-a", "market-c"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("expected %q at position %d, got %q", id, i, ids[i])
		}
	}
}

func TestBuildBatches_GroupsByDestination(t *testing.T) {
	orders := []types.Order{
		{MarketID: "market-a", Side: types.SideYes, Amount: 1},
		{MarketID: "market-b", Side: types.SideNo, Amount: 2},
		{MarketID: "market-a", Side: types.SideNo, Amount: 3},
		{MarketID: "market-c", Side: types.SideYes, Amount: 4},
	}
	resolved := map[string]string{
		"market-a": "chain-1",
		"market-b": "chain-2",
		"market-c": "chain-1",
	}

	batches := buildBatches(orders, resolved, "chain-user")

	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}

	// Destinations appear in first-appearance order.
	if batches[0].Destination != "chain-1" || batches[1].Destination != "chain-2" {
		t.Errorf("unexpected destination order: %q, %q",
			batches[0].Destination, batches[1].Destination)
	}

	// Orders keep caller order inside each batch; market-c shares chain-1
	// with market-a and lands in the same batch.
	first := batches[0].Orders
	if len(first) != 3 || first[0].Amount != 1 || first[1].Amount != 3 || first[2].Amount != 4 {
		t.Errorf("unexpected chain-1 batch contents: %+v", first)
	}

	second := batches[1].Orders
	if len(second) != 1 || second[0].Amount != 2 {
		t.Errorf("unexpected chain-2 batch contents: %+v", second)
	}

	for _, b := range batches {
		if b.Origin != "chain-user" {
			t.Errorf("expected origin chain-user, got %q", b.Origin)
		}
		if b.Nonce != 0 {
			t.Errorf("expected unassigned nonce, got %d", b.Nonce)
		}
	}
}

func TestBuildBatches_SingleDestination(t *testing.T) {
	orders := []types.Order{
		{MarketID: "market-a", Side: types.SideYes, Amount: 1},
		{MarketID: "market-a", Side: types.SideNo, Amount: 2},
	}
	resolved := map[string]string{"market-a": "chain-1"}

	batches := buildBatches(orders, resolved, "chain-user")

	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if len(batches[0].Orders) != 2 {
		t.Errorf("expected 2 orders in batch, got %d", len(batches[0].Orders))
	}
}
