package handler

import (
	"encoding/json"
	"net/http"

	"github.com/assist-link/support-agent/internal/model"
	"github.com/assist-link/support-agent/internal/service"
	"github.com/assist-link/support-agent/pkg/logger"
)

// SentimentHandler exposes the classifiers directly, useful for client
// previews and debugging.
type SentimentHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewSentimentHandler creates a new sentiment handler.
func NewSentimentHandler(svc *service.ConversationService, log *logger.Logger) *SentimentHandler {
	return &SentimentHandler{
		service: svc,
		logger:  log,
	}
}

// Text handles POST /api/v1/sentiment/text
func (h *SentimentHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req model.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, h.service.AnalyzeText(req.Message))
}

// Analyze handles POST /api/v1/sentiment/analyze (multipart audio).
func (h *SentimentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	audio, err := readAudio(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.service.AnalyzeAudio(r.Context(), audio))
}
