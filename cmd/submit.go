package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/internal/agent"
	"github.com/oddstream/oddstream-agent/internal/directory"
	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/internal/sequencer"
	"github.com/oddstream/oddstream-agent/internal/storage"
	"github.com/oddstream/oddstream-agent/pkg/config"
	"github.com/oddstream/oddstream-agent/pkg/types"
	"github.com/oddstream/oddstream-agent/pkg/wallet"
)

// submitStack bundles the components a one-shot submitting command needs.
type submitStack struct {
	cfg       *config.Config
	logger    *zap.Logger
	agent     *agent.Agent
	sequencer *sequencer.Sequencer
}

// newSubmitStack loads configuration and wires a signing node client,
// directory, sequencer and dispatcher into an agent. Each invocation claims
// a fresh user chain, so the in-memory nonce sequence starts at 1.
func newSubmitStack() (*submitStack, error) {
	// Load .env file
	envErr := godotenv.Load()
	if envErr != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("PRIVATE_KEY not set in .env")
	}
	if cfg.RegistryChainID == "" {
		return nil, fmt.Errorf("REGISTRY_CHAIN_ID not set in .env")
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	signer, err := wallet.New(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}

	client, err := ledger.NewClient(&ledger.Config{
		RPCURL:  cfg.NodeRPCURL,
		Timeout: cfg.NodeRequestTimeout,
		Wallet:  signer,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create node client: %w", err)
	}

	dir, err := directory.New(directory.Config{
		Resolver: client,
		Cache:    nil, // No cache for CLI
		TTL:      cfg.DirectoryCacheTTL,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	seq, err := sequencer.New(storage.NewMemoryNonceStore(logger), logger)
	if err != nil {
		return nil, fmt.Errorf("create sequencer: %w", err)
	}

	dispatcher := agent.NewDispatcher(agent.DispatcherConfig{
		Sender:  client,
		Timeout: cfg.DispatchTimeout,
		Logger:  logger,
	})

	ag, err := agent.New(agent.Config{
		Client:          client,
		Resolver:        dir,
		Sequencer:       seq,
		Dispatcher:      dispatcher,
		RegistryChainID: cfg.RegistryChainID,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	fmt.Printf("Wallet: %s\n", signer.Address())
	fmt.Printf("Node: %s\n", cfg.NodeRPCURL)
	fmt.Printf("Registry chain: %s\n\n", cfg.RegistryChainID)

	return &submitStack{
		cfg:       cfg,
		logger:    logger,
		agent:     ag,
		sequencer: seq,
	}, nil
}

// Close releases the nonce store and flushes the logger.
func (s *submitStack) Close() {
	_ = s.sequencer.Close()
	_ = s.logger.Sync()
}

// printOutcomes prints one block per dispatched batch.
func printOutcomes(outcomes []types.BatchOutcome) {
	for i := range outcomes {
		o := &outcomes[i]
		if o.Succeeded() {
			fmt.Printf("✅ Batch to %s accepted\n", o.Batch.Destination)
			fmt.Printf("  Orders: %d\n", len(o.Batch.Orders))
			fmt.Printf("  Nonce: %d\n", o.Batch.Nonce)
			fmt.Printf("  Transaction: %s\n", o.TransactionID)
			fmt.Printf("  Elapsed: %s\n\n", o.Elapsed)
		} else {
			fmt.Printf("❌ Batch to %s failed: %v\n", o.Batch.Destination, o.Err)
			fmt.Printf("  Orders: %d\n", len(o.Batch.Orders))
			fmt.Printf("  Nonce: %d\n\n", o.Batch.Nonce)
		}
	}
}
