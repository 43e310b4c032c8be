package middleware

import (
	"net/http"
	"strings"

	"github.com/benvon/omnifocus-bridge/internal/models"
)

// ContentType requires application/json on requests that carry a body.
// Bodyless POSTs are allowed; operations treat them as empty arguments.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasBody(r) {
			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				respondError(w, http.StatusBadRequest, models.ErrorPayload{Error: "Content-Type header is required", Kind: "validation"}, nil)
				return
			}
			if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				respondError(w, http.StatusUnsupportedMediaType, models.ErrorPayload{Error: "Content-Type must be application/json", Kind: "validation"}, nil)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
	default:
		return false
	}
	// -1 means unknown length, such as a chunked body
	return r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody
}
