package handler

import (
	"net/http"

	"github.com/assist-link/support-agent/internal/events"
)

// Integration reports whether an external collaborator has credentials.
type Integration interface {
	Configured() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	transcriber Integration
	issuer      Integration
	natsClient  *events.Client
}

// NewHealthHandler creates a new health handler. natsClient may be nil.
func NewHealthHandler(transcriber, issuer Integration, natsClient *events.Client) *HealthHandler {
	return &HealthHandler{
		transcriber: transcriber,
		issuer:      issuer,
		natsClient:  natsClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "assist-link-support-agent",
		"integrations": map[string]string{
			"transcription": configuredLabel(h.transcriber.Configured()),
			"ticketing":     configuredLabel(h.issuer.Configured()),
			"events":        configuredLabel(h.natsClient != nil && h.natsClient.IsConnected()),
		},
	})
}

// Ready handles GET /ready. The core runs entirely on local fallbacks, so
// readiness only requires the process itself.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
