package types

import "errors"

// Side identifies which outcome of a binary market an order trades.
type Side string

// Outcome sides of a binary market.
const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Valid reports whether s is one of the two known outcome sides.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Order is a single trading instruction against one market. An order is
// immutable once constructed. MaxPrice is an optional limit in [0,1];
// nil means no price cap.
type Order struct {
	MarketID string   `json:"market_id"`
	Side     Side     `json:"side"`
	Amount   float64  `json:"amount"`
	MaxPrice *float64 `json:"max_price,omitempty"`
}

// Validate checks the order against the boundary contract before it is
// routed or serialized.
func (o Order) Validate() error {
	if o.MarketID == "" {
		return errors.New("market id is required")
	}
	if !o.Side.Valid() {
		return errors.New("side must be YES or NO")
	}
	if o.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if o.MaxPrice != nil && (*o.MaxPrice < 0 || *o.MaxPrice > 1) {
		return errors.New("max price must be within [0,1]")
	}
	return nil
}

// PriceCap returns a copy of o with its max price set.
func (o Order) PriceCap(price float64) Order {
	o.MaxPrice = &price
	return o
}
