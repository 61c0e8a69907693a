package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Ledger node
	NodeRPCURL         string
	NodeWSURL          string
	NodeRequestTimeout time.Duration

	// Agent identity
	RegistryChainID string
	PrivateKey      string

	// Routing engine
	DirectoryCacheTTL time.Duration
	DispatchTimeout   time.Duration

	// Nonce store
	NonceStore   string // "memory" or "postgres"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string

	// Market making
	MMMarkets      []string
	MMSpread       float64
	MMOrderSize    float64
	MMInterval     time.Duration
	MMAutoDiscover bool

	// Market discovery
	DiscoveryInterval   time.Duration
	DiscoveryMinVolume  float64
	DiscoveryMaxMarkets int

	// Submission circuit breaker
	BreakerEnabled   bool
	BreakerThreshold int
	BreakerCooldown  time.Duration

	// Live subscriptions and node monitoring
	SubscribeEnabled bool
	MonitorEnabled   bool
	MonitorInterval  time.Duration
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	rpcURL := getEnvOrDefault("NODE_RPC_URL", "https://faucet.testnet-conway.linera.net")

	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Ledger node defaults
		NodeRPCURL:         rpcURL,
		NodeWSURL:          getEnvOrDefault("NODE_WS_URL", deriveWSURL(rpcURL)),
		NodeRequestTimeout: getDurationOrDefault("NODE_REQUEST_TIMEOUT", 10*time.Second),

		// Agent identity (no defaults; required only by submitting commands)
		RegistryChainID: os.Getenv("REGISTRY_CHAIN_ID"),
		PrivateKey:      os.Getenv("PRIVATE_KEY"),

		// Routing engine defaults
		DirectoryCacheTTL: getDurationOrDefault("DIRECTORY_CACHE_TTL", 24*time.Hour),
		DispatchTimeout:   getDurationOrDefault("DISPATCH_TIMEOUT", 15*time.Second),

		// Nonce store defaults
		NonceStore:   getEnvOrDefault("NONCE_STORE", "memory"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "oddstream"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "oddstream123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "oddstream_agent"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		// Market making defaults
		MMMarkets:      getSliceOrDefault("MM_MARKETS", nil),
		MMSpread:       getFloat64OrDefault("MM_SPREAD", 0.02),
		MMOrderSize:    getFloat64OrDefault("MM_ORDER_SIZE", 100.0),
		MMInterval:     getDurationOrDefault("MM_INTERVAL", 30*time.Second),
		MMAutoDiscover: getBoolOrDefault("MM_AUTO_DISCOVER", false),

		// Discovery defaults
		DiscoveryInterval:   getDurationOrDefault("DISCOVERY_INTERVAL", 60*time.Second),
		DiscoveryMinVolume:  getFloat64OrDefault("DISCOVERY_MIN_VOLUME", 0),
		DiscoveryMaxMarkets: getIntOrDefault("DISCOVERY_MAX_MARKETS", 25),

		// Circuit breaker defaults
		BreakerEnabled:   getBoolOrDefault("BREAKER_ENABLED", true),
		BreakerThreshold: getIntOrDefault("BREAKER_THRESHOLD", 5),
		BreakerCooldown:  getDurationOrDefault("BREAKER_COOLDOWN", 2*time.Minute),

		// Subscription and monitor defaults
		SubscribeEnabled: getBoolOrDefault("SUBSCRIBE_ENABLED", true),
		MonitorEnabled:   getBoolOrDefault("MONITOR_ENABLED", true),
		MonitorInterval:  getDurationOrDefault("MONITOR_INTERVAL", 5*time.Second),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.NodeRPCURL == "" {
		return fmt.Errorf("NODE_RPC_URL cannot be empty")
	}

	if c.MMSpread < 0 || c.MMSpread >= 1.0 {
		return fmt.Errorf("MM_SPREAD must be within [0, 1), got %f", c.MMSpread)
	}

	if c.MMOrderSize <= 0 {
		return fmt.Errorf("MM_ORDER_SIZE must be positive, got %f", c.MMOrderSize)
	}

	if c.MMInterval <= 0 {
		return fmt.Errorf("MM_INTERVAL must be positive, got %s", c.MMInterval)
	}

	if c.NonceStore != "memory" && c.NonceStore != "postgres" {
		return fmt.Errorf("NONCE_STORE must be 'memory' or 'postgres', got %q", c.NonceStore)
	}

	if c.BreakerEnabled && c.BreakerThreshold < 1 {
		return fmt.Errorf("BREAKER_THRESHOLD must be at least 1, got %d", c.BreakerThreshold)
	}

	return nil
}

// deriveWSURL maps an RPC endpoint to the node's websocket endpoint.
func deriveWSURL(rpcURL string) string {
	ws := rpcURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return strings.TrimSuffix(ws, "/") + "/ws"
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getSliceOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}

	return out
}
