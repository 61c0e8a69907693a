// Package marketmaker quotes both sides of selected markets on a fixed
// refresh interval.
package marketmaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/pkg/types"
)

// MarketReader fetches the current odds for a market.
type MarketReader interface {
	MarketState(ctx context.Context, marketID string) (types.MarketState, error)
}

// OrderPlacer routes and dispatches a batch of orders.
type OrderPlacer interface {
	PlaceBatchOrder(ctx context.Context, orders []types.Order) ([]types.BatchOutcome, error)
}

// SubmitGate decides per market whether a submission may go ahead and is
// told how each one ended.
type SubmitGate interface {
	Allow(marketID string) bool
	RecordSuccess(marketID string)
	RecordFailure(marketID string)
}

// Config holds maker configuration.
type Config struct {
	Reader          MarketReader
	Placer          OrderPlacer
	Gate            SubmitGate // optional
	Spread          float64
	OrderSize       float64
	Interval        time.Duration // default 30s
	DispatchTimeout time.Duration // bound for in-flight submissions, default 15s
	Logger          *zap.Logger
}

// Maker runs one quoting loop per market: fetch odds, derive a symmetric
// quote, submit the capped pair, sleep. A failed cycle is logged and the
// next interval tries again; the loop only ends with its context. When the
// context ends mid-submission the loop returns immediately while the
// dispatch runs to completion on its own.
type Maker struct {
	reader          MarketReader
	placer          OrderPlacer
	gate            SubmitGate
	spread          float64
	orderSize       float64
	interval        time.Duration
	dispatchTimeout time.Duration
	logger          *zap.Logger

	mu      sync.Mutex
	ctx     context.Context
	running map[string]struct{}

	wg sync.WaitGroup
}

// New creates a maker.
func New(cfg Config) (*Maker, error) {
	if cfg.Reader == nil {
		return nil, errors.New("reader cannot be nil")
	}
	if cfg.Placer == nil {
		return nil, errors.New("placer cannot be nil")
	}
	if cfg.Spread < 0 || cfg.Spread >= 1 {
		return nil, fmt.Errorf("spread must be in [0, 1), got %v", cfg.Spread)
	}
	if cfg.OrderSize <= 0 {
		return nil, fmt.Errorf("order size must be positive, got %v", cfg.OrderSize)
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	dispatchTimeout := cfg.DispatchTimeout
	if dispatchTimeout <= 0 {
		dispatchTimeout = 15 * time.Second
	}

	return &Maker{
		reader:          cfg.Reader,
		placer:          cfg.Placer,
		gate:            cfg.Gate,
		spread:          cfg.Spread,
		orderSize:       cfg.OrderSize,
		interval:        interval,
		dispatchTimeout: dispatchTimeout,
		logger:          cfg.Logger,
		running:         make(map[string]struct{}),
	}, nil
}

// Start arms the maker. Markets are added afterwards with AddMarket.
func (m *Maker) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx != nil {
		return errors.New("maker already started")
	}
	m.ctx = ctx

	m.logger.Info("maker-starting",
		zap.Float64("spread", m.spread),
		zap.Float64("order-size", m.orderSize),
		zap.Duration("interval", m.interval))

	return nil
}

// AddMarket spawns a quoting loop for marketID. Adding a market twice is a
// no-op.
func (m *Maker) AddMarket(marketID string) error {
	if marketID == "" {
		return errors.New("market id cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil {
		return errors.New("maker not started")
	}
	if _, ok := m.running[marketID]; ok {
		return nil
	}
	m.running[marketID] = struct{}{}

	ctx := m.ctx
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.removeMarket(marketID)
		m.loop(ctx, marketID)
	}()

	return nil
}

// Run quotes a single market on the calling goroutine until ctx ends.
func (m *Maker) Run(ctx context.Context, marketID string) error {
	if marketID == "" {
		return errors.New("market id cannot be empty")
	}

	m.mu.Lock()
	if _, ok := m.running[marketID]; ok {
		m.mu.Unlock()
		return fmt.Errorf("market %s already quoting", marketID)
	}
	m.running[marketID] = struct{}{}
	m.mu.Unlock()

	defer m.removeMarket(marketID)
	m.loop(ctx, marketID)
	return nil
}

// Markets lists the markets currently being quoted.
func (m *Maker) Markets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.running))
	for id := range m.running {
		ids = append(ids, id)
	}
	return ids
}

// Close waits for all quoting loops and in-flight submissions.
func (m *Maker) Close() error {
	m.wg.Wait()
	m.logger.Info("maker-stopped")
	return nil
}

func (m *Maker) removeMarket(marketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.running, marketID)
}

// loop is one market's refresh cycle.
func (m *Maker) loop(ctx context.Context, marketID string) {
	logger := m.logger.With(zap.String("market-id", marketID))
	logger.Info("maker-loop-started",
		zap.Float64("spread", m.spread),
		zap.Duration("interval", m.interval))

	ActiveMakers.Inc()
	defer ActiveMakers.Dec()

	for {
		if ctx.Err() != nil {
			logger.Info("maker-loop-stopped")
			return
		}

		m.cycle(ctx, marketID, logger)

		select {
		case <-ctx.Done():
			logger.Info("maker-loop-stopped")
			return
		case <-time.After(m.interval):
		}
	}
}

// cycle runs one quote-and-submit round. The submission itself is detached
// from ctx so cancellation never abandons a dispatch half-way; the cycle
// just stops waiting for it.
func (m *Maker) cycle(ctx context.Context, marketID string, logger *zap.Logger) {
	state, err := m.reader.MarketState(ctx, marketID)
	if err != nil {
		CyclesTotal.WithLabelValues("fetch_error").Inc()
		logger.Warn("odds-fetch-failed", zap.Error(err))
		return
	}

	quote, err := BuildQuote(marketID, state, m.spread)
	if err != nil {
		CyclesTotal.WithLabelValues("quote_error").Inc()
		logger.Warn("quote-rejected",
			zap.Float64("yes-odds", state.YesOdds),
			zap.Float64("no-odds", state.NoOdds),
			zap.Error(err))
		return
	}

	if m.gate != nil && !m.gate.Allow(marketID) {
		CyclesTotal.WithLabelValues("suppressed").Inc()
		logger.Warn("submission-suppressed")
		return
	}

	done := make(chan struct{})
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(done)
		m.submit(ctx, quote, logger)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Info("maker-cancelled-inflight-submission-continues")
	}
}

// submit places the quote pair and settles the gate. It outlives the
// loop's context, bounded by the dispatch timeout.
func (m *Maker) submit(ctx context.Context, quote Quote, logger *zap.Logger) {
	subCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.dispatchTimeout)
	defer cancel()

	outcomes, err := m.placer.PlaceBatchOrder(subCtx, quote.Orders(m.orderSize))
	if err != nil {
		CyclesTotal.WithLabelValues("submit_error").Inc()
		if m.gate != nil {
			m.gate.RecordFailure(quote.MarketID)
		}
		logger.Warn("quote-submission-failed", zap.Error(err))
		return
	}

	failed := types.FailedOutcomes(outcomes)
	if len(failed) > 0 {
		CyclesTotal.WithLabelValues("submit_error").Inc()
		if m.gate != nil {
			m.gate.RecordFailure(quote.MarketID)
		}
		logger.Warn("quote-dispatch-failed", zap.Error(failed[0].Err))
		return
	}

	CyclesTotal.WithLabelValues("ok").Inc()
	PairsSubmittedTotal.Inc()
	if m.gate != nil {
		m.gate.RecordSuccess(quote.MarketID)
	}

	logger.Info("quotes-submitted",
		zap.Float64("mid", quote.Mid),
		zap.Float64("bid", quote.Bid),
		zap.Float64("ask", quote.Ask),
		zap.Float64("yes-price", quote.YesPrice),
		zap.Float64("no-price", quote.NoPrice),
		zap.Float64("size", m.orderSize))
}
