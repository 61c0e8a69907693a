package types

import (
	"errors"
	"testing"
)

func TestOrderValidate(t *testing.T) {
	price := func(p float64) *float64 { return &p }

	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{
			name:    "valid-yes-order-with-cap",
			order:   Order{MarketID: "market-1", Side: SideYes, Amount: 100, MaxPrice: price(0.55)},
			wantErr: false,
		},
		{
			name:    "valid-no-order-without-cap",
			order:   Order{MarketID: "market-1", Side: SideNo, Amount: 25},
			wantErr: false,
		},
		{
			name:    "missing-market-id",
			order:   Order{Side: SideYes, Amount: 100},
			wantErr: true,
		},
		{
			name:    "unknown-side",
			order:   Order{MarketID: "market-1", Side: Side("MAYBE"), Amount: 100},
			wantErr: true,
		},
		{
			name:    "zero-amount",
			order:   Order{MarketID: "market-1", Side: SideYes, Amount: 0},
			wantErr: true,
		},
		{
			name:    "negative-amount",
			order:   Order{MarketID: "market-1", Side: SideNo, Amount: -5},
			wantErr: true,
		},
		{
			name:    "max-price-above-one",
			order:   Order{MarketID: "market-1", Side: SideYes, Amount: 10, MaxPrice: price(1.01)},
			wantErr: true,
		},
		{
			name:    "max-price-negative",
			order:   Order{MarketID: "market-1", Side: SideYes, Amount: 10, MaxPrice: price(-0.01)},
			wantErr: true,
		},
		{
			name:    "max-price-at-bounds",
			order:   Order{MarketID: "market-1", Side: SideYes, Amount: 10, MaxPrice: price(1.0)},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestOrderPriceCap(t *testing.T) {
	base := Order{MarketID: "market-1", Side: SideYes, Amount: 100}

	capped := base.PriceCap(0.56925)

	if capped.MaxPrice == nil {
		t.Fatal("expected max price to be set")
	}
	if *capped.MaxPrice != 0.56925 {
		t.Errorf("expected max price 0.56925, got %v", *capped.MaxPrice)
	}
	if base.MaxPrice != nil {
		t.Error("expected original order to remain uncapped")
	}
}

func TestSideValid(t *testing.T) {
	if !SideYes.Valid() || !SideNo.Valid() {
		t.Error("expected YES and NO to be valid sides")
	}
	if Side("yes").Valid() {
		t.Error("expected lowercase side to be invalid")
	}
	if Side("").Valid() {
		t.Error("expected empty side to be invalid")
	}
}

func TestFailedOutcomes(t *testing.T) {
	outcomes := []BatchOutcome{
		{Batch: Batch{Destination: "chain-a", Nonce: 1}, TransactionID: "tx-1"},
		{Batch: Batch{Destination: "chain-b", Nonce: 2}, Err: errors.New("boom")},
		{Batch: Batch{Destination: "chain-c", Nonce: 3}, TransactionID: "tx-3"},
	}

	failed := FailedOutcomes(outcomes)

	if len(failed) != 1 {
		t.Fatalf("expected 1 failed outcome, got %d", len(failed))
	}
	if failed[0].Batch.Destination != "chain-b" {
		t.Errorf("expected chain-b to be the failed destination, got %s", failed[0].Batch.Destination)
	}
	if outcomes[0].Succeeded() != true || outcomes[1].Succeeded() != false {
		t.Error("Succeeded mismatch")
	}
}
