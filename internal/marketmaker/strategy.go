package marketmaker

import (
	"fmt"
	"time"

	"github.com/oddstream/oddstream-agent/pkg/types"
)

// Quote is one round of two-sided prices derived from a market's odds.
type Quote struct {
	MarketID   string
	Mid        float64
	Bid        float64
	Ask        float64
	YesPrice   float64 // cap for the YES buy
	NoPrice    float64 // cap for the NO buy
	ComputedAt time.Time
}

// BuildQuote derives a symmetric quote around the market's mid estimate.
// The yes odds and the complement of the no odds are two readings of the
// same probability, so the mid averages them; the spread is applied
// half-and-half to each side. The YES buy is capped at the bid and the NO
// buy at the complement of the ask, which is what makes the pair passive.
func BuildQuote(marketID string, state types.MarketState, spread float64) (Quote, error) {
	if marketID == "" {
		return Quote{}, fmt.Errorf("market id cannot be empty")
	}
	if spread < 0 || spread >= 1 {
		return Quote{}, fmt.Errorf("spread must be in [0, 1), got %v", spread)
	}
	if state.YesOdds < 0 || state.YesOdds > 1 {
		return Quote{}, fmt.Errorf("yes odds out of range: %v", state.YesOdds)
	}
	if state.NoOdds < 0 || state.NoOdds > 1 {
		return Quote{}, fmt.Errorf("no odds out of range: %v", state.NoOdds)
	}

	mid := (state.YesOdds + (1 - state.NoOdds)) / 2
	bid := mid * (1 - spread/2)
	ask := mid * (1 + spread/2)

	yesPrice := bid
	noPrice := 1 - ask

	// Degenerate odds push a cap to or past the ends of the price range;
	// there is no sane two-sided quote there.
	if yesPrice <= 0 || yesPrice >= 1 {
		return Quote{}, fmt.Errorf("yes cap %v outside (0, 1)", yesPrice)
	}
	if noPrice <= 0 || noPrice >= 1 {
		return Quote{}, fmt.Errorf("no cap %v outside (0, 1)", noPrice)
	}

	return Quote{
		MarketID:   marketID,
		Mid:        mid,
		Bid:        bid,
		Ask:        ask,
		YesPrice:   yesPrice,
		NoPrice:    noPrice,
		ComputedAt: time.Now(),
	}, nil
}

// Orders builds the two capped orders for one refresh, size units on each
// side.
func (q Quote) Orders(size float64) []types.Order {
	yes := q.YesPrice
	no := q.NoPrice
	return []types.Order{
		{MarketID: q.MarketID, Side: types.SideYes, Amount: size, MaxPrice: &yes},
		{MarketID: q.MarketID, Side: types.SideNo, Amount: size, MaxPrice: &no},
	}
}
