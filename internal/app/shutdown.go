package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.probe.SetReady(false)

	// Cancel context to signal all components
	a.cancel()

	// Shutdown components in dependency order
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server
	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Wait out quoting loops and in-flight submissions
	err = a.maker.Close()
	if err != nil {
		a.logger.Error("maker-close-error", zap.Error(err))
	}

	// Drain the market state manager
	if a.marketState != nil {
		err = a.marketState.Close()
		if err != nil {
			a.logger.Error("market-state-close-error", zap.Error(err))
		}
	}

	// Release the nonce store
	err = a.sequencer.Close()
	if err != nil {
		a.logger.Error("sequencer-close-error", zap.Error(err))
	}

	// Close the directory cache
	a.marketCache.Close()

	// Wait for all goroutines
	a.wg.Wait()

	a.logger.Info("application-shutdown-complete")

	return nil
}
