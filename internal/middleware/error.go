package middleware

import (
	"encoding/json"
	"net/http"

	logpkg "github.com/benvon/omnifocus-bridge/internal/logger"
	"github.com/benvon/omnifocus-bridge/internal/models"
	"github.com/benvon/omnifocus-bridge/internal/request"
	"go.uber.org/zap"
)

// ErrorHandler recovers panics into a 500 with the internal error payload
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					// details stay server-side
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("method", r.Method),
						zap.String("request_id", request.RequestIDFromContext(r.Context())),
					)
					respondError(w, http.StatusInternalServerError, models.ErrorPayload{Error: "internal error", Kind: "internal"}, logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// respondError sends an error JSON response
func respondError(w http.ResponseWriter, status int, payload models.ErrorPayload, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
		)
	}
}
