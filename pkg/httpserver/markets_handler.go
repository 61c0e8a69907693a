package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/oddstream/oddstream-agent/internal/markets"
	"go.uber.org/zap"
)

// MarketsHandler handles HTTP requests for streamed market state.
type MarketsHandler struct {
	manager *markets.Manager
	logger  *zap.Logger
}

// NewMarketsHandler creates a new markets handler.
func NewMarketsHandler(manager *markets.Manager, logger *zap.Logger) *MarketsHandler {
	return &MarketsHandler{
		manager: manager,
		logger:  logger,
	}
}

// MarketSnapshot represents the latest state of a single tracked market.
type MarketSnapshot struct {
	MarketID  string    `json:"market_id"`
	YesOdds   float64   `json:"yes_odds"`
	NoOdds    float64   `json:"no_odds"`
	Volume    float64   `json:"volume"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarketsResponse represents the HTTP response for tracked markets.
type MarketsResponse struct {
	Count   int              `json:"count"`
	Markets []MarketSnapshot `json:"markets"`
}

// HandleMarkets handles GET /api/markets requests.
func (h *MarketsHandler) HandleMarkets(w http.ResponseWriter, r *http.Request) {
	// Only allow GET requests
	if r.Method != http.MethodGet {
		writeError(h.logger, w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Optional filter: ?market_id=<id> narrows the response to one market.
	marketID := r.URL.Query().Get("market_id")

	h.logger.Debug("markets-request-received", zap.String("market-id", marketID))

	if marketID != "" {
		update, found := h.manager.GetSnapshot(marketID)
		if !found {
			writeError(h.logger, w, "market not tracked", http.StatusNotFound)
			return
		}

		h.writeResponse(w, MarketsResponse{
			Count: 1,
			Markets: []MarketSnapshot{{
				MarketID:  update.MarketID,
				YesOdds:   update.YesOdds,
				NoOdds:    update.NoOdds,
				Volume:    update.Volume,
				Status:    update.Status,
				UpdatedAt: update.Timestamp,
			}},
		})
		return
	}

	snapshots := h.manager.Snapshots()
	entries := make([]MarketSnapshot, 0, len(snapshots))
	for id, update := range snapshots {
		entries = append(entries, MarketSnapshot{
			MarketID:  id,
			YesOdds:   update.YesOdds,
			NoOdds:    update.NoOdds,
			Volume:    update.Volume,
			Status:    update.Status,
			UpdatedAt: update.Timestamp,
		})
	}

	h.writeResponse(w, MarketsResponse{
		Count:   len(entries),
		Markets: entries,
	})
}

func (h *MarketsHandler) writeResponse(w http.ResponseWriter, response MarketsResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}
