// Package app wires the agent's components together and runs them as one
// daemon.
package app

import (
	"context"
	"sync"

	"github.com/oddstream/oddstream-agent/internal/agent"
	"github.com/oddstream/oddstream-agent/internal/circuitbreaker"
	"github.com/oddstream/oddstream-agent/internal/discovery"
	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/internal/marketmaker"
	"github.com/oddstream/oddstream-agent/internal/markets"
	"github.com/oddstream/oddstream-agent/internal/monitor"
	"github.com/oddstream/oddstream-agent/internal/sequencer"
	"github.com/oddstream/oddstream-agent/pkg/cache"
	"github.com/oddstream/oddstream-agent/pkg/config"
	"github.com/oddstream/oddstream-agent/pkg/healthprobe"
	"github.com/oddstream/oddstream-agent/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	probe      *healthprobe.Probe
	httpServer *httpserver.Server

	nodeClient  *ledger.Client
	agent       *agent.Agent
	sequencer   *sequencer.Sequencer
	breaker     *circuitbreaker.SubmitBreaker
	maker       *marketmaker.Maker
	subscriber  *ledger.Subscriber
	marketState *markets.Manager
	discovery   *discovery.Service
	monitor     *monitor.Monitor
	marketCache cache.Cache

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options holds application options.
type Options struct {
	Markets []string // For debugging: quote exactly these markets, skip discovery
}
