// Package directory maintains the market to chain mapping used to route
// order batches. Lookups hit the on-chain registry and successful mappings
// are cached; a market missing from the registry is never cached, so a
// market listed after a failed lookup resolves on the next attempt.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/pkg/cache"
	"github.com/oddstream/oddstream-agent/pkg/types"
)

// Resolver queries the registry for the chain that owns a market.
type Resolver interface {
	ResolveMarket(ctx context.Context, marketID string) (string, error)
}

// Config holds directory configuration.
type Config struct {
	Resolver Resolver
	Cache    cache.Cache // optional; nil disables caching
	TTL      time.Duration
	Logger   *zap.Logger
}

// Directory resolves market ids to destination chain ids.
type Directory struct {
	resolver Resolver
	cache    cache.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// New creates a directory. Default TTL is 24 hours.
func New(cfg Config) (*Directory, error) {
	if cfg.Resolver == nil {
		return nil, errors.New("resolver cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Directory{
		resolver: cfg.Resolver,
		cache:    cfg.Cache,
		ttl:      ttl,
		logger:   cfg.Logger,
	}, nil
}

// Resolve returns the chain id owning marketID. Only complete mappings are
// ever cached; unknown markets and registry failures are not.
func (d *Directory) Resolve(ctx context.Context, marketID string) (string, error) {
	if marketID == "" {
		return "", &types.UnknownMarketError{MarketID: marketID}
	}

	cacheKey := fmt.Sprintf("resolve:%s", marketID)

	if d.cache != nil {
		if cached, ok := d.cache.Get(cacheKey); ok {
			if chainID, ok := cached.(string); ok && chainID != "" {
				CacheHitsTotal.Inc()
				return chainID, nil
			}
		}
		CacheMissesTotal.Inc()
	}

	chainID, err := d.resolver.ResolveMarket(ctx, marketID)
	if err != nil {
		LookupFailuresTotal.Inc()
		return "", err
	}

	if d.cache != nil {
		d.cache.Set(cacheKey, chainID, d.ttl)
	}

	d.logger.Debug("market-resolved",
		zap.String("market-id", marketID),
		zap.String("chain-id", chainID))

	return chainID, nil
}

// ResolveAll resolves every distinct market id in marketIDs. It fails on the
// first unresolvable market, before the caller has dispatched anything.
func (d *Directory) ResolveAll(ctx context.Context, marketIDs []string) (map[string]string, error) {
	resolved := make(map[string]string, len(marketIDs))

	for _, id := range marketIDs {
		if _, ok := resolved[id]; ok {
			continue
		}
		chainID, err := d.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		resolved[id] = chainID
	}

	return resolved, nil
}

// Invalidate drops a cached mapping so the next Resolve hits the registry.
func (d *Directory) Invalidate(marketID string) {
	if d.cache == nil {
		return
	}
	d.cache.Delete(fmt.Sprintf("resolve:%s", marketID))
}
