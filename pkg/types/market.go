package types

import "time"

// MarketState is a point-in-time snapshot of a market's two-sided odds.
// Both values are probabilities in [0,1].
type MarketState struct {
	YesOdds float64 `json:"yes_odds"`
	NoOdds  float64 `json:"no_odds"`
}

// Market status values reported by the node.
const (
	MarketStatusActive   = "Active"
	MarketStatusClosed   = "Closed"
	MarketStatusResolved = "Resolved"
)

// Oracle types a market can be resolved by.
const (
	OracleFastTee   = "FastTee"
	OracleCommittee = "Committee"
	OracleHybrid    = "Hybrid"
)

// Market is a full catalog record returned by the node's market query.
type Market struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	YesOdds        float64    `json:"yesOdds"`
	NoOdds         float64    `json:"noOdds"`
	Volume         float64    `json:"volume"`
	Liquidity      float64    `json:"liquidity"`
	Status         string     `json:"status"`
	OracleType     string     `json:"oracleType"`
	ResolutionTime *time.Time `json:"resolutionTime,omitempty"`
	ChainID        string     `json:"chainId"`
}

// State returns the odds snapshot embedded in the catalog record.
func (m *Market) State() MarketState {
	return MarketState{YesOdds: m.YesOdds, NoOdds: m.NoOdds}
}

// IsActive reports whether the market is accepting orders.
func (m *Market) IsActive() bool {
	return m.Status == MarketStatusActive
}

// MarketUpdate is one streamed odds update from the node's subscription
// channel.
type MarketUpdate struct {
	MarketID  string    `json:"marketId"`
	YesOdds   float64   `json:"yesOdds"`
	NoOdds    float64   `json:"noOdds"`
	Volume    float64   `json:"volume"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// State returns the odds snapshot carried by the update.
func (u *MarketUpdate) State() MarketState {
	return MarketState{YesOdds: u.YesOdds, NoOdds: u.NoOdds}
}
