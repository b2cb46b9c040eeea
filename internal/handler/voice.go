package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assist-link/support-agent/internal/middleware"
	"github.com/assist-link/support-agent/internal/service"
	"github.com/assist-link/support-agent/pkg/logger"
)

// VoiceHandler handles audio turn endpoints.
type VoiceHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(svc *service.ConversationService, log *logger.Logger) *VoiceHandler {
	return &VoiceHandler{
		service: svc,
		logger:  log,
	}
}

// Turn handles POST /api/v1/conversations/:id/voice. The request carries a
// multipart "audio" file; the turn is transcribed and then processed like a
// text turn.
func (h *VoiceHandler) Turn(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	audio, err := readAudio(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.HandleVoiceTurn(r.Context(), conversationID, audio)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func readAudio(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(middleware.MaxAudioBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("audio")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, middleware.MaxAudioBytes))
}
