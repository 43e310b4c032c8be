package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const pingTimeout = 10 * time.Second

// Pinger checks that the application answers automation calls
type Pinger interface {
	Ping(ctx context.Context) (string, error)
}

// HealthChecker handles health check requests
type HealthChecker struct {
	pinger Pinger
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(pinger Pinger) *HealthChecker {
	return &HealthChecker{pinger: pinger}
}

// HealthResponse represents the /healthz response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// RegisterRoutes registers health routes
func (h *HealthChecker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
}

// Health reports that the server is running. It never touches the application.
func (h *HealthChecker) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthCheck handles /healthz. With mode=extended it runs the ping script.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		respondJSON(w, http.StatusOK, response)
		return
	}

	checks := make(map[string]string)
	version, err := h.checkAutomation(r.Context())
	if err != nil {
		response.Status = "unhealthy"
		checks["automation"] = "unhealthy: " + err.Error()
	} else {
		checks["automation"] = "healthy"
		response.Version = version
	}
	response.Checks = checks

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	respondJSON(w, statusCode, response)
}

func (h *HealthChecker) checkAutomation(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return h.pinger.Ping(ctx)
}
