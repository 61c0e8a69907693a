package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/oddstream/oddstream-agent/internal/agent"
	"github.com/oddstream/oddstream-agent/internal/circuitbreaker"
	"github.com/oddstream/oddstream-agent/internal/marketmaker"
	"go.uber.org/zap"
)

// StatusHandler handles HTTP requests for agent runtime state.
type StatusHandler struct {
	agent   *agent.Agent
	breaker *circuitbreaker.SubmitBreaker
	maker   *marketmaker.Maker
	logger  *zap.Logger
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(ag *agent.Agent, breaker *circuitbreaker.SubmitBreaker, maker *marketmaker.Maker, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		agent:   ag,
		breaker: breaker,
		maker:   maker,
		logger:  logger,
	}
}

// StatusResponse represents the HTTP response for agent state.
type StatusResponse struct {
	Agent         agent.Status            `json:"agent"`
	QuotedMarkets []string                `json:"quoted_markets,omitempty"`
	Breakers      []circuitbreaker.Status `json:"breakers,omitempty"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleStatus handles GET /api/status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	// Only allow GET requests
	if r.Method != http.MethodGet {
		writeError(h.logger, w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.logger.Debug("status-request-received")

	response := StatusResponse{
		Agent: h.agent.Status(),
	}
	if h.maker != nil {
		response.QuotedMarkets = h.maker.Markets()
	}
	if h.breaker != nil {
		response.Breakers = h.breaker.Snapshot()
	}

	// Write JSON response
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func writeError(logger *zap.Logger, w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
