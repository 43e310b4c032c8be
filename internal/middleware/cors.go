package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS creates CORS middleware for the given origins. With no origins no CORS
// headers are sent, so browsers refuse cross-origin calls.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	// rs/cors treats an empty list as "*"
	if len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         86400,
	})
	return c.Handler
}
