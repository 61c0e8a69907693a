package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default http port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.NodeRPCURL != "https://faucet.testnet-conway.linera.net" {
		t.Errorf("unexpected default rpc url %s", cfg.NodeRPCURL)
	}
	if cfg.NodeWSURL != "wss://faucet.testnet-conway.linera.net/ws" {
		t.Errorf("unexpected derived ws url %s", cfg.NodeWSURL)
	}
	if cfg.MMSpread != 0.02 {
		t.Errorf("expected default spread 0.02, got %f", cfg.MMSpread)
	}
	if cfg.MMOrderSize != 100.0 {
		t.Errorf("expected default order size 100, got %f", cfg.MMOrderSize)
	}
	if cfg.MMInterval != 30*time.Second {
		t.Errorf("expected default interval 30s, got %s", cfg.MMInterval)
	}
	if cfg.NonceStore != "memory" {
		t.Errorf("expected default nonce store memory, got %s", cfg.NonceStore)
	}
	if cfg.DirectoryCacheTTL != 24*time.Hour {
		t.Errorf("expected default directory ttl 24h, got %s", cfg.DirectoryCacheTTL)
	}
	if !cfg.BreakerEnabled {
		t.Error("expected breaker enabled by default")
	}
	if cfg.MMAutoDiscover {
		t.Error("expected auto discover disabled by default")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	os.Setenv("NODE_RPC_URL", "http://localhost:8079")
	os.Setenv("MM_MARKETS", "market-1, market-2 ,,market-3")
	os.Setenv("MM_SPREAD", "0.05")
	os.Setenv("NONCE_STORE", "postgres")
	os.Setenv("MM_AUTO_DISCOVER", "true")
	t.Cleanup(func() {
		os.Unsetenv("NODE_RPC_URL")
		os.Unsetenv("MM_MARKETS")
		os.Unsetenv("MM_SPREAD")
		os.Unsetenv("NONCE_STORE")
		os.Unsetenv("MM_AUTO_DISCOVER")
	})

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.NodeWSURL != "ws://localhost:8079/ws" {
		t.Errorf("expected ws url derived from http endpoint, got %s", cfg.NodeWSURL)
	}
	if len(cfg.MMMarkets) != 3 || cfg.MMMarkets[0] != "market-1" || cfg.MMMarkets[2] != "market-3" {
		t.Errorf("unexpected parsed market list %v", cfg.MMMarkets)
	}
	if cfg.MMSpread != 0.05 {
		t.Errorf("expected spread override 0.05, got %f", cfg.MMSpread)
	}
	if cfg.NonceStore != "postgres" {
		t.Errorf("expected postgres nonce store, got %s", cfg.NonceStore)
	}
	if !cfg.MMAutoDiscover {
		t.Error("expected auto discover enabled")
	}
}

func TestLoadFromEnv_ExplicitWSURL(t *testing.T) {
	os.Setenv("NODE_WS_URL", "wss://custom.example.net/subscriptions")
	t.Cleanup(func() {
		os.Unsetenv("NODE_WS_URL")
	})

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.NodeWSURL != "wss://custom.example.net/subscriptions" {
		t.Errorf("expected explicit ws url to win, got %s", cfg.NodeWSURL)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:         "8080",
			NodeRPCURL:       "http://localhost:8079",
			MMSpread:         0.02,
			MMOrderSize:      100,
			MMInterval:       30 * time.Second,
			NonceStore:       "memory",
			BreakerEnabled:   true,
			BreakerThreshold: 5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid-config", mutate: func(*Config) {}, wantErr: false},
		{name: "empty-http-port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: true},
		{name: "empty-rpc-url", mutate: func(c *Config) { c.NodeRPCURL = "" }, wantErr: true},
		{name: "spread-at-one", mutate: func(c *Config) { c.MMSpread = 1.0 }, wantErr: true},
		{name: "negative-spread", mutate: func(c *Config) { c.MMSpread = -0.01 }, wantErr: true},
		{name: "zero-order-size", mutate: func(c *Config) { c.MMOrderSize = 0 }, wantErr: true},
		{name: "zero-interval", mutate: func(c *Config) { c.MMInterval = 0 }, wantErr: true},
		{name: "bad-nonce-store", mutate: func(c *Config) { c.NonceStore = "redis" }, wantErr: true},
		{name: "breaker-threshold-zero", mutate: func(c *Config) { c.BreakerThreshold = 0 }, wantErr: true},
		{name: "breaker-threshold-ignored-when-disabled", mutate: func(c *Config) {
			c.BreakerEnabled = false
			c.BreakerThreshold = 0
		}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("default-level", func(t *testing.T) {
		logger, err := NewLogger("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if logger == nil {
			t.Fatal("expected non-nil logger")
		}
	})

	t.Run("debug-level", func(t *testing.T) {
		logger, err := NewLogger("debug")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if logger == nil {
			t.Fatal("expected non-nil logger")
		}
	})

	t.Run("invalid-level", func(t *testing.T) {
		_, err := NewLogger("shouty")
		if err == nil {
			t.Error("expected error for invalid level")
		}
	})
}
