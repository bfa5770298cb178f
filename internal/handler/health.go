package handler

import (
	"net/http"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping() error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	cachePinger Pinger
}

// NewHealthHandler creates a new health handler. cachePinger may be nil
// when the in-memory cache is in use.
func NewHealthHandler(cachePinger Pinger) *HealthHandler {
	return &HealthHandler{
		cachePinger: cachePinger,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.cachePinger != nil {
		if err := h.cachePinger.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "cache not reachable",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
