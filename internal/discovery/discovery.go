// Package discovery finds active markets worth quoting by polling the
// node's catalog. Newly seen market ids are handed to the app, which adds
// them to the maker and the live subscription.
package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/pkg/types"
)

// Lister queries the node's market catalog.
type Lister interface {
	Markets(ctx context.Context, filters ledger.MarketFilters) ([]types.Market, error)
}

// Service discovers new active markets by polling the node.
type Service struct {
	client       Lister
	pollInterval time.Duration
	minVolume    float64
	maxMarkets   int
	logger       *zap.Logger

	mu    sync.RWMutex
	known map[string]time.Time

	newMarketsCh chan string
}

// Config holds discovery service configuration.
type Config struct {
	Client       Lister
	PollInterval time.Duration
	MinVolume    float64
	MaxMarkets   int
	Logger       *zap.Logger
}

// New creates a discovery service.
func New(cfg *Config) *Service {
	return &Service{
		client:       cfg.Client,
		pollInterval: cfg.PollInterval,
		minVolume:    cfg.MinVolume,
		maxMarkets:   cfg.MaxMarkets,
		logger:       cfg.Logger,
		known:        make(map[string]time.Time),
		newMarketsCh: make(chan string, 100),
	}
}

// Run starts the discovery polling loop.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("discovery-service-starting",
		zap.Duration("poll-interval", s.pollInterval),
		zap.Float64("min-volume", s.minVolume),
		zap.Int("max-markets", s.maxMarkets))

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	// Initial poll
	err := s.poll(ctx)
	if err != nil {
		s.logger.Error("initial-poll-failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("discovery-service-stopping")
			close(s.newMarketsCh)
			return ctx.Err()
		case <-ticker.C:
			err := s.poll(ctx)
			if err != nil {
				s.logger.Error("poll-failed", zap.Error(err))
			}
		}
	}
}

// poll fetches active markets from the node and identifies new ones.
func (s *Service) poll(ctx context.Context) error {
	start := time.Now()
	defer func() {
		PollDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	markets, err := s.client.Markets(ctx, ledger.MarketFilters{
		Status:    types.MarketStatusActive,
		MinVolume: s.minVolume,
		Limit:     s.maxMarkets,
	})
	if err != nil {
		PollErrorsTotal.Inc()
		return fmt.Errorf("list active markets: %w", err)
	}

	MarketsSeenTotal.Add(float64(len(markets)))

	newMarkets := s.identifyNewMarkets(markets)

	for _, id := range newMarkets {
		select {
		case s.newMarketsCh <- id:
			NewMarketsTotal.Inc()
			s.logger.Info("new-market-discovered", zap.String("market-id", id))
		default:
			s.logger.Warn("new-markets-channel-full", zap.String("market-id", id))
		}
	}

	s.logger.Debug("poll-complete",
		zap.Int("total-markets", len(markets)),
		zap.Int("new-markets", len(newMarkets)),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// identifyNewMarkets returns ids not tracked yet, respecting the tracking
// cap. The node filters by status; the check here covers catalogs that
// ignore the filter.
func (s *Service) identifyNewMarkets(markets []types.Market) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newMarkets []string

	for i := range markets {
		market := &markets[i]

		if _, exists := s.known[market.ID]; exists {
			continue
		}
		if !market.IsActive() {
			s.logger.Debug("skipping-inactive-market",
				zap.String("market-id", market.ID),
				zap.String("status", market.Status))
			continue
		}
		if s.maxMarkets > 0 && len(s.known) >= s.maxMarkets {
			s.logger.Debug("market-cap-reached",
				zap.String("market-id", market.ID),
				zap.Int("max-markets", s.maxMarkets))
			break
		}

		s.known[market.ID] = time.Now()
		newMarkets = append(newMarkets, market.ID)
	}

	TrackedMarkets.Set(float64(len(s.known)))

	return newMarkets
}

// NewMarkets returns the channel of newly discovered market ids. The
// channel is closed when Run returns.
func (s *Service) NewMarkets() <-chan string {
	return s.newMarketsCh
}

// Known returns the ids of all markets discovered so far.
func (s *Service) Known() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.known))
	for id := range s.known {
		ids = append(ids, id)
	}
	return ids
}
