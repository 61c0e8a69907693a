package app

import (
	"go.uber.org/zap"
)

// handleNewMarkets starts quoting markets as discovery finds them.
func (a *App) handleNewMarkets() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			return
		case marketID, ok := <-a.discovery.NewMarkets():
			if !ok {
				return
			}

			a.trackMarket(marketID)
		}
	}
}

func (a *App) trackMarket(marketID string) {
	err := a.maker.AddMarket(marketID)
	if err != nil {
		a.logger.Error("add-market-failed",
			zap.String("market-id", marketID),
			zap.Error(err))
		return
	}

	if a.subscriber != nil {
		a.subscriber.Subscribe(marketID)
	}

	a.logger.Info("market-tracked", zap.String("market-id", marketID))
}
