package testutil

import (
	"time"

	"github.com/oddstream/oddstream-agent/pkg/types"
)

// CreateTestMarket creates an active catalog market mapped to its own chain.
func CreateTestMarket(id string, yesOdds, noOdds float64) types.Market {
	return types.Market{
		ID:          id,
		Description: "Test market: " + id,
		YesOdds:     yesOdds,
		NoOdds:      noOdds,
		Volume:      1000,
		Liquidity:   500,
		Status:      types.MarketStatusActive,
		OracleType:  types.OracleFastTee,
		ChainID:     "chain-" + id,
	}
}

// CreateTestOrder creates a valid order without a price cap.
func CreateTestOrder(marketID string, side types.Side, amount float64) types.Order {
	return types.Order{
		MarketID: marketID,
		Side:     side,
		Amount:   amount,
	}
}

// CreateTestUpdate creates a streamed market update stamped now.
func CreateTestUpdate(marketID string, yesOdds, noOdds float64) types.MarketUpdate {
	return types.MarketUpdate{
		MarketID:  marketID,
		YesOdds:   yesOdds,
		NoOdds:    noOdds,
		Volume:    1000,
		Status:    types.MarketStatusActive,
		Timestamp: time.Now(),
	}
}
