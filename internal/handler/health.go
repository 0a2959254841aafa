package handler

import (
	"context"
	"net/http"
	"time"

	natsclient "github.com/capitalize-ai/hr-service-desk/internal/nats"
	"github.com/capitalize-ai/hr-service-desk/internal/store"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store      store.CaseStore
	natsClient *natsclient.Client
}

// NewHealthHandler creates a new health handler. natsClient may be nil when
// NATS is not in use.
func NewHealthHandler(caseStore store.CaseStore, natsClient *natsclient.Client) *HealthHandler {
	return &HealthHandler{
		store:      caseStore,
		natsClient: natsClient,
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
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "case store unavailable",
		})
		return
	}

	if h.natsClient != nil && !h.natsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
