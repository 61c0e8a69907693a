package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Probe provides liveness and readiness checks for the agent process.
type Probe struct {
	startTime time.Time
	ready     atomic.Bool
}

// New creates a new Probe.
func New() *Probe {
	return &Probe{
		startTime: time.Now(),
	}
}

// SetReady marks the agent as ready to serve traffic.
func (p *Probe) SetReady(ready bool) {
	p.ready.Store(ready)
}

// IsReady reports the current readiness state.
func (p *Probe) IsReady() bool {
	return p.ready.Load()
}

// ProbeResponse represents a health or readiness check response.
type ProbeResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Message string `json:"message,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK while the process is running.
func (p *Probe) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := ProbeResponse{
			Status: "healthy",
			Uptime: time.Since(p.startTime).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK once the agent is initialized, 503 before that.
func (p *Probe) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !p.ready.Load() {
			resp := ProbeResponse{
				Status:  "not_ready",
				Message: "agent is starting",
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(resp)
			return
		}

		resp := ProbeResponse{
			Status: "ready",
			Uptime: time.Since(p.startTime).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
