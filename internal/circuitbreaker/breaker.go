// Package circuitbreaker suppresses quote submission for markets whose
// dispatches keep failing, so a dead market chain does not burn a nonce on
// every refresh while the rest of the book keeps quoting.
package circuitbreaker

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Breaker states for one market.
const (
	StateClosed   = "closed"
	StateOpen     = "open"
	StateHalfOpen = "half_open"
)

// SubmitBreaker tracks consecutive dispatch failures per market. After the
// threshold is hit the market opens and submissions are suppressed for the
// cooldown; the first attempt afterwards runs as a trial, and its result
// decides between closing and reopening.
type SubmitBreaker struct {
	threshold int
	cooldown  time.Duration
	logger    *zap.Logger

	mu     sync.Mutex
	states map[string]*marketState
}

type marketState struct {
	state         string
	failures      int
	openedAt      time.Time
	trialInFlight bool
}

// Config holds breaker configuration.
type Config struct {
	Threshold int
	Cooldown  time.Duration
	Logger    *zap.Logger
}

// Status is a snapshot of one market's breaker state.
type Status struct {
	MarketID string `json:"market_id"`
	State    string `json:"state"`
	Failures int    `json:"failures"`
}

// New creates a breaker.
func New(cfg *Config) (*SubmitBreaker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Threshold < 1 {
		return nil, fmt.Errorf("threshold must be at least 1")
	}
	if cfg.Cooldown <= 0 {
		return nil, fmt.Errorf("cooldown must be positive")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &SubmitBreaker{
		threshold: cfg.Threshold,
		cooldown:  cfg.Cooldown,
		logger:    cfg.Logger,
		states:    make(map[string]*marketState),
	}, nil
}

// Allow reports whether a submission for marketID may go ahead. An open
// market whose cooldown has elapsed admits exactly one trial submission.
func (b *SubmitBreaker) Allow(marketID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	ms := b.market(marketID)

	switch ms.state {
	case StateClosed:
		return true

	case StateOpen:
		if time.Since(ms.openedAt) < b.cooldown {
			SuppressedTotal.Inc()
			return false
		}
		ms.state = StateHalfOpen
		ms.trialInFlight = true
		b.logger.Info("breaker-half-open",
			zap.String("market-id", marketID))
		return true

	case StateHalfOpen:
		if ms.trialInFlight {
			SuppressedTotal.Inc()
			return false
		}
		ms.trialInFlight = true
		return true
	}

	return true
}

// RecordSuccess closes the market's breaker.
func (b *SubmitBreaker) RecordSuccess(marketID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ms := b.market(marketID)
	if ms.state != StateClosed {
		OpenMarkets.Dec()
		b.logger.Info("breaker-closed",
			zap.String("market-id", marketID))
	}
	ms.state = StateClosed
	ms.failures = 0
	ms.trialInFlight = false
}

// RecordFailure counts a dispatch failure. A half-open trial failure
// reopens immediately; in the closed state the threshold applies.
func (b *SubmitBreaker) RecordFailure(marketID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ms := b.market(marketID)

	switch ms.state {
	case StateHalfOpen:
		ms.state = StateOpen
		ms.openedAt = time.Now()
		ms.trialInFlight = false
		TripsTotal.Inc()
		b.logger.Warn("breaker-reopened",
			zap.String("market-id", marketID))

	case StateClosed:
		ms.failures++
		if ms.failures >= b.threshold {
			ms.state = StateOpen
			ms.openedAt = time.Now()
			TripsTotal.Inc()
			OpenMarkets.Inc()
			b.logger.Warn("breaker-opened",
				zap.String("market-id", marketID),
				zap.Int("failures", ms.failures))
		}

	case StateOpen:
		// Late failure from a send that started before the trip.
		ms.failures++
	}
}

// State returns the stored state for marketID.
func (b *SubmitBreaker) State(marketID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.market(marketID).state
}

// Snapshot returns the per-market breaker states.
func (b *SubmitBreaker) Snapshot() []Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	statuses := make([]Status, 0, len(b.states))
	for id, ms := range b.states {
		statuses = append(statuses, Status{
			MarketID: id,
			State:    ms.state,
			Failures: ms.failures,
		})
	}
	return statuses
}

// market returns the state record for marketID; callers hold b.mu.
func (b *SubmitBreaker) market(marketID string) *marketState {
	ms, ok := b.states[marketID]
	if !ok {
		ms = &marketState{state: StateClosed}
		b.states[marketID] = ms
	}
	return ms
}
