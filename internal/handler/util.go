package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/assist-link/support-agent/internal/service"
	"github.com/assist-link/support-agent/internal/store"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeServiceError maps domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, service.ErrConversationClosed):
		writeError(w, http.StatusConflict, "conversation is closed")
	case errors.Is(err, service.ErrConversationEscalated):
		writeError(w, http.StatusConflict, "conversation is escalated to a human agent")
	case errors.Is(err, service.ErrEmptyTranscript):
		writeError(w, http.StatusUnprocessableEntity, "could not transcribe audio, please try again or type your message")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
