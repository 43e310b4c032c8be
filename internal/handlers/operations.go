package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/benvon/omnifocus-bridge/internal/logger"
	"github.com/benvon/omnifocus-bridge/internal/omnifocus"
	"github.com/benvon/omnifocus-bridge/internal/tools"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Caller dispatches a named operation and returns its encoded payload
type Caller interface {
	Call(ctx context.Context, name string, raw json.RawMessage) tools.Result
}

// OperationsHandler exposes registry operations as POST endpoints
type OperationsHandler struct {
	caller Caller
	logger *zap.Logger
}

// NewOperationsHandler creates a new operations handler
func NewOperationsHandler(caller Caller, log *zap.Logger) *OperationsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OperationsHandler{caller: caller, logger: log}
}

// RegisterRoutes registers the operation routes
func (h *OperationsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/mcp/{tool}", h.Call).Methods("POST")
}

// Call handles POST /mcp/{tool}. Domain failures are reported in the body
// with status 200; only internal failures return 500.
func (h *OperationsHandler) Call(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["tool"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, string(omnifocus.KindValidation), "request body too large")
			return
		}
		h.logger.Warn("request_body_read_failed",
			zap.String("tool", name),
			zap.String("error", logger.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusBadRequest, string(omnifocus.KindValidation), "failed to read request body")
		return
	}

	res := h.caller.Call(r.Context(), name, body)

	status := http.StatusOK
	if res.Kind == omnifocus.KindInternal {
		status = http.StatusInternalServerError
	}
	respondPayload(w, status, res.Payload)
}
