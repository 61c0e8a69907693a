// Package agent implements the trading agent core: a user chain claimed at
// startup, an owned nonce sequence, and batch order routing across the
// market chains of a sharded ledger.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/pkg/types"
)

// NodeClient is what the agent needs from the ledger node.
type NodeClient interface {
	CreateChain(ctx context.Context) (string, error)
	SendMessage(ctx context.Context, destination string, payload ledger.Payload) (string, error)
}

// ChainResolver maps market ids to destination chain ids.
type ChainResolver interface {
	ResolveAll(ctx context.Context, marketIDs []string) (map[string]string, error)
}

// NonceSource allocates strictly increasing per-origin nonces.
type NonceSource interface {
	Next(ctx context.Context, origin string) (uint64, error)
}

// Config holds agent configuration.
type Config struct {
	Client          NodeClient
	Resolver        ChainResolver
	Sequencer       NonceSource
	Dispatcher      *Dispatcher
	RegistryChainID string
	Logger          *zap.Logger
}

// Agent owns the user chain and the nonce sequence. All order traffic flows
// through PlaceBatchOrder; nothing else allocates nonces, which is what
// keeps the per-destination ordering guarantee cheap to enforce.
type Agent struct {
	client          NodeClient
	resolver        ChainResolver
	sequencer       NonceSource
	dispatcher      *Dispatcher
	registryChainID string
	logger          *zap.Logger

	mu          sync.RWMutex
	userChainID string
}

// Status is a point-in-time snapshot of the agent.
type Status struct {
	Initialized     bool   `json:"initialized"`
	UserChainID     string `json:"user_chain_id,omitempty"`
	RegistryChainID string `json:"registry_chain_id"`
}

// New creates an agent.
func New(cfg Config) (*Agent, error) {
	if cfg.Client == nil {
		return nil, errors.New("client cannot be nil")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("resolver cannot be nil")
	}
	if cfg.Sequencer == nil {
		return nil, errors.New("sequencer cannot be nil")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher cannot be nil")
	}
	if cfg.RegistryChainID == "" {
		return nil, errors.New("registry chain id cannot be empty")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Agent{
		client:          cfg.Client,
		resolver:        cfg.Resolver,
		sequencer:       cfg.Sequencer,
		dispatcher:      cfg.Dispatcher,
		registryChainID: cfg.RegistryChainID,
		logger:          cfg.Logger,
	}, nil
}

// Initialize claims a user chain from the node and registers it with the
// registry chain. The agent only becomes initialized once registration
// succeeds; a failure part-way leaves it uninitialized and Initialize can
// be retried. Calling it again after success is a no-op.
func (a *Agent) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.userChainID != "" {
		return nil
	}

	chainID, err := a.client.CreateChain(ctx)
	if err != nil {
		return fmt.Errorf("create user chain: %w", err)
	}

	payload := ledger.NewRegisterUserChainPayload(chainID)
	_, err = a.client.SendMessage(ctx, a.registryChainID, payload)
	if err != nil {
		return fmt.Errorf("register user chain: %w", err)
	}

	a.userChainID = chainID
	a.logger.Info("agent-initialized",
		zap.String("user-chain-id", chainID),
		zap.String("registry-chain-id", a.registryChainID))

	return nil
}

// UserChainID returns the agent's user chain.
func (a *Agent) UserChainID() (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.userChainID == "" {
		return "", types.ErrNotInitialized
	}
	return a.userChainID, nil
}

// Status reports the agent's current state.
func (a *Agent) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return Status{
		Initialized:     a.userChainID != "",
		UserChainID:     a.userChainID,
		RegistryChainID: a.registryChainID,
	}
}

// PlaceBatchOrder routes orders to their market chains and dispatches one
// batch per destination, each carrying a fresh nonce from the agent's
// sequence. If any market cannot be resolved the whole call fails before
// anything is sent and no nonce is consumed. After dispatch begins, every
// batch runs to completion and the caller inspects per-batch outcomes.
func (a *Agent) PlaceBatchOrder(ctx context.Context, orders []types.Order) ([]types.BatchOutcome, error) {
	a.mu.RLock()
	origin := a.userChainID
	a.mu.RUnlock()

	if origin == "" {
		return nil, types.ErrNotInitialized
	}

	if err := validateOrders(orders); err != nil {
		return nil, err
	}

	requestID := uuid.New().String()

	resolved, err := a.resolver.ResolveAll(ctx, distinctMarkets(orders))
	if err != nil {
		a.logger.Warn("batch-rejected",
			zap.String("request-id", requestID),
			zap.Int("order-count", len(orders)),
			zap.Error(err))
		return nil, err
	}

	batches := buildBatches(orders, resolved, origin)

	// Allocation and reservation form one critical section: concurrent
	// calls targeting the same destination register their nonces in the
	// order they were issued, and the dispatcher admits sends in that
	// order.
	a.mu.Lock()
	allocated := 0
	var allocErr error
	for i := range batches {
		nonce, err := a.sequencer.Next(ctx, origin)
		if err != nil {
			allocErr = err
			break
		}
		batches[i].Nonce = nonce
		a.dispatcher.Reserve(batches[i].Destination, nonce)
		allocated++
	}
	if allocErr != nil {
		for i := 0; i < allocated; i++ {
			a.dispatcher.Release(batches[i].Destination, batches[i].Nonce)
		}
		a.mu.Unlock()
		return nil, fmt.Errorf("allocate nonces: %w", allocErr)
	}
	a.mu.Unlock()

	OrdersRoutedTotal.Add(float64(len(orders)))
	a.logger.Info("batch-routed",
		zap.String("request-id", requestID),
		zap.String("origin", origin),
		zap.Int("order-count", len(orders)),
		zap.Int("batch-count", len(batches)))

	outcomes := a.dispatcher.Dispatch(ctx, batches)

	failed := len(types.FailedOutcomes(outcomes))
	if failed > 0 {
		a.logger.Warn("batch-order-partial",
			zap.String("request-id", requestID),
			zap.Int("failed", failed),
			zap.Int("total", len(outcomes)))
	} else {
		a.logger.Info("batch-order-complete",
			zap.String("request-id", requestID),
			zap.Int("total", len(outcomes)))
	}

	return outcomes, nil
}
