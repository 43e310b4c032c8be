package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/benvon/omnifocus-bridge/internal/models"
)

// BearerAuth requires "Authorization: Bearer <token>" when token is set.
// An empty token disables the check.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, models.ErrorPayload{Error: "missing Authorization header"}, nil)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, models.ErrorPayload{Error: "invalid Authorization header format"}, nil)
				return
			}

			if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
				respondError(w, http.StatusUnauthorized, models.ErrorPayload{Error: "invalid token"}, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
