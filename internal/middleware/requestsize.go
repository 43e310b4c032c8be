package middleware

import (
	"net/http"

	"github.com/benvon/omnifocus-bridge/internal/models"
)

// DefaultMaxRequestSize caps operation argument bodies at 1MB
const DefaultMaxRequestSize int64 = 1 << 20

// tooLargePayload matches the body the operations handler writes when a
// chunked body overruns the reader limit.
var tooLargePayload = models.ErrorPayload{Error: "request body too large", Kind: "validation"}

// MaxRequestSize rejects bodies over maxBytes. A declared Content-Length is
// refused up front; anything else is bounded by http.MaxBytesReader.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondError(w, http.StatusRequestEntityTooLarge, tooLargePayload, nil)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
