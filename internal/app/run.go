package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("registry-chain", a.cfg.RegistryChainID),
		zap.String("nonce-store", a.cfg.NonceStore),
		zap.String("log-level", a.cfg.LogLevel))

	err := a.startComponents()
	if err != nil {
		return err
	}

	// Mark as ready
	a.probe.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.Strings("markets", a.cfg.MMMarkets),
		zap.Bool("auto-discover", a.discovery != nil))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	// Start HTTP server
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	// Claim and register the user chain before anything can place orders.
	err := a.initializeAgent()
	if err != nil {
		return fmt.Errorf("initialize agent: %w", err)
	}

	// Start websocket subscriber and market state manager
	if a.subscriber != nil {
		a.wg.Add(1)
		go a.runSubscriber()

		err = a.marketState.Start(a.ctx)
		if err != nil {
			return fmt.Errorf("start market state manager: %w", err)
		}
	}

	// Start quoting the configured markets
	err = a.startMaker()
	if err != nil {
		return fmt.Errorf("start maker: %w", err)
	}

	// Start discovery and the new-market handler
	if a.discovery != nil {
		a.wg.Add(1)
		go a.runDiscovery()

		a.wg.Add(1)
		go a.handleNewMarkets()
	}

	// Start node monitor
	if a.monitor != nil {
		a.wg.Add(1)
		go a.runMonitor()
	}

	return nil
}

func (a *App) initializeAgent() error {
	initCtx, cancel := context.WithTimeout(a.ctx, 30*time.Second)
	defer cancel()

	return a.agent.Initialize(initCtx)
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runSubscriber() {
	defer a.wg.Done()
	a.subscriber.Subscribe(a.cfg.MMMarkets...)
	a.subscriber.Run(a.ctx)
}

func (a *App) runDiscovery() {
	defer a.wg.Done()
	err := a.discovery.Run(a.ctx)
	if err != nil && !errors.Is(err, a.ctx.Err()) {
		a.logger.Error("discovery-error", zap.Error(err))
	}
}

func (a *App) runMonitor() {
	defer a.wg.Done()
	err := a.monitor.Run(a.ctx)
	if err != nil && !errors.Is(err, a.ctx.Err()) {
		a.logger.Error("monitor-error", zap.Error(err))
	}
}

func (a *App) startMaker() error {
	err := a.maker.Start(a.ctx)
	if err != nil {
		return err
	}

	for _, marketID := range a.cfg.MMMarkets {
		err = a.maker.AddMarket(marketID)
		if err != nil {
			return fmt.Errorf("add market %s: %w", marketID, err)
		}
	}

	return nil
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
