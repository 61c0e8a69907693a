package app

import (
	"context"
	"fmt"

	"github.com/oddstream/oddstream-agent/internal/agent"
	"github.com/oddstream/oddstream-agent/internal/circuitbreaker"
	"github.com/oddstream/oddstream-agent/internal/directory"
	"github.com/oddstream/oddstream-agent/internal/discovery"
	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/internal/marketmaker"
	"github.com/oddstream/oddstream-agent/internal/markets"
	"github.com/oddstream/oddstream-agent/internal/monitor"
	"github.com/oddstream/oddstream-agent/internal/sequencer"
	"github.com/oddstream/oddstream-agent/internal/storage"
	"github.com/oddstream/oddstream-agent/pkg/cache"
	"github.com/oddstream/oddstream-agent/pkg/config"
	"github.com/oddstream/oddstream-agent/pkg/healthprobe"
	"github.com/oddstream/oddstream-agent/pkg/httpserver"
	"github.com/oddstream/oddstream-agent/pkg/wallet"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	probe := healthprobe.New()

	nodeClient, err := setupNodeClient(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup node client: %w", err)
	}

	marketCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	chainDirectory, err := setupDirectory(cfg, logger, nodeClient, marketCache)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup directory: %w", err)
	}

	seq, err := setupSequencer(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup sequencer: %w", err)
	}

	tradingAgent, err := setupAgent(cfg, logger, nodeClient, chainDirectory, seq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup agent: %w", err)
	}

	breaker, err := setupBreaker(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup circuit breaker: %w", err)
	}

	maker, err := setupMaker(cfg, logger, nodeClient, tradingAgent, breaker)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup maker: %w", err)
	}

	subscriber, marketState, err := setupSubscriber(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup subscriber: %w", err)
	}

	// A fixed market list from the command line skips discovery.
	var discoveryService *discovery.Service
	if cfg.MMAutoDiscover && len(opts.Markets) == 0 {
		discoveryService = setupDiscovery(cfg, logger, nodeClient)
	}

	nodeMonitor, err := setupMonitor(cfg, logger, nodeClient)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup monitor: %w", err)
	}

	httpServer := setupHTTPServer(cfg, logger, probe, tradingAgent, breaker, maker, marketState)

	if len(opts.Markets) > 0 {
		cfg.MMMarkets = opts.Markets
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		probe:       probe,
		httpServer:  httpServer,
		nodeClient:  nodeClient,
		agent:       tradingAgent,
		sequencer:   seq,
		breaker:     breaker,
		maker:       maker,
		subscriber:  subscriber,
		marketState: marketState,
		discovery:   discoveryService,
		monitor:     nodeMonitor,
		marketCache: marketCache,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func setupNodeClient(cfg *config.Config, logger *zap.Logger) (*ledger.Client, error) {
	signer, err := wallet.New(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}

	logger.Info("wallet-loaded", zap.String("address", signer.Address()))

	return ledger.NewClient(&ledger.Config{
		RPCURL:  cfg.NodeRPCURL,
		Timeout: cfg.NodeRequestTimeout,
		Wallet:  signer,
		Logger:  logger,
	})
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max items (1000 markets)
		MaxCost:     1000,  // Maximum 1000 items in cache
		BufferItems: 64,    // Buffer size for Get operations
		Logger:      logger,
	})
}

func setupDirectory(cfg *config.Config, logger *zap.Logger, nodeClient *ledger.Client, marketCache cache.Cache) (*directory.Directory, error) {
	return directory.New(directory.Config{
		Resolver: nodeClient,
		Cache:    marketCache,
		TTL:      cfg.DirectoryCacheTTL,
		Logger:   logger,
	})
}

func setupSequencer(cfg *config.Config, logger *zap.Logger) (*sequencer.Sequencer, error) {
	var store sequencer.Store
	if cfg.NonceStore == "postgres" {
		pgStore, err := storage.NewPostgresNonceStore(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres nonce store: %w", err)
		}
		store = pgStore
	} else {
		store = storage.NewMemoryNonceStore(logger)
	}

	return sequencer.New(store, logger)
}

func setupAgent(
	cfg *config.Config,
	logger *zap.Logger,
	nodeClient *ledger.Client,
	chainDirectory *directory.Directory,
	seq *sequencer.Sequencer,
) (*agent.Agent, error) {
	dispatcher := agent.NewDispatcher(agent.DispatcherConfig{
		Sender:  nodeClient,
		Timeout: cfg.DispatchTimeout,
		Logger:  logger,
	})

	return agent.New(agent.Config{
		Client:          nodeClient,
		Resolver:        chainDirectory,
		Sequencer:       seq,
		Dispatcher:      dispatcher,
		RegistryChainID: cfg.RegistryChainID,
		Logger:          logger,
	})
}

func setupBreaker(cfg *config.Config, logger *zap.Logger) (*circuitbreaker.SubmitBreaker, error) {
	if !cfg.BreakerEnabled {
		logger.Info("circuit-breaker-disabled")
		return nil, nil
	}

	return circuitbreaker.New(&circuitbreaker.Config{
		Threshold: cfg.BreakerThreshold,
		Cooldown:  cfg.BreakerCooldown,
		Logger:    logger,
	})
}

func setupMaker(
	cfg *config.Config,
	logger *zap.Logger,
	nodeClient *ledger.Client,
	tradingAgent *agent.Agent,
	breaker *circuitbreaker.SubmitBreaker,
) (*marketmaker.Maker, error) {
	makerCfg := marketmaker.Config{
		Reader:          nodeClient,
		Placer:          tradingAgent,
		Spread:          cfg.MMSpread,
		OrderSize:       cfg.MMOrderSize,
		Interval:        cfg.MMInterval,
		DispatchTimeout: cfg.DispatchTimeout,
		Logger:          logger,
	}
	// A nil *SubmitBreaker must not become a non-nil gate interface.
	if breaker != nil {
		makerCfg.Gate = breaker
	}

	return marketmaker.New(makerCfg)
}

func setupSubscriber(cfg *config.Config, logger *zap.Logger) (*ledger.Subscriber, *markets.Manager, error) {
	if !cfg.SubscribeEnabled {
		logger.Info("subscriber-disabled")
		return nil, nil, nil
	}

	subscriber, err := ledger.NewSubscriber(ledger.SubscriberConfig{
		WSURL:  cfg.NodeWSURL,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create subscriber: %w", err)
	}

	manager := markets.New(&markets.Config{
		Logger:  logger,
		Updates: subscriber.Updates(),
	})

	return subscriber, manager, nil
}

func setupDiscovery(cfg *config.Config, logger *zap.Logger, nodeClient *ledger.Client) *discovery.Service {
	return discovery.New(&discovery.Config{
		Client:       nodeClient,
		PollInterval: cfg.DiscoveryInterval,
		MinVolume:    cfg.DiscoveryMinVolume,
		MaxMarkets:   cfg.DiscoveryMaxMarkets,
		Logger:       logger,
	})
}

func setupMonitor(cfg *config.Config, logger *zap.Logger, nodeClient *ledger.Client) (*monitor.Monitor, error) {
	if !cfg.MonitorEnabled {
		return nil, nil
	}

	return monitor.New(&monitor.Config{
		Client:       nodeClient,
		PollInterval: cfg.MonitorInterval,
		Logger:       logger,
	})
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	probe *healthprobe.Probe,
	tradingAgent *agent.Agent,
	breaker *circuitbreaker.SubmitBreaker,
	maker *marketmaker.Maker,
	marketState *markets.Manager,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:           cfg.HTTPPort,
		Logger:         logger,
		Probe:          probe,
		Agent:          tradingAgent,
		Breaker:        breaker,
		Maker:          maker,
		MarketsManager: marketState,
	})
}
