package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/benvon/omnifocus-bridge/internal/logger"
	"github.com/benvon/omnifocus-bridge/internal/models"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondPayload writes an already encoded payload unchanged
func respondPayload(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// respondJSONError sends an error payload with a sanitized message
func respondJSONError(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, models.ErrorPayload{
		Error: logger.SanitizeString(message, logger.MaxErrorMessageLength),
		Kind:  kind,
	})
}
