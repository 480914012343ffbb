package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/portfi/portfi-portal/internal/assistant"
	"github.com/portfi/portfi-portal/internal/common"
)

// ServerHealthHandler reports whether the chat backend is reachable.
type ServerHealthHandler struct {
	logger    *common.Logger
	assistant assistant.Assistant
}

// NewServerHealthHandler creates a new server health handler.
func NewServerHealthHandler(logger *common.Logger, a assistant.Assistant) *ServerHealthHandler {
	return &ServerHealthHandler{logger: logger, assistant: a}
}

// ServeHTTP handles GET /api/server-health.
func (h *ServerHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.assistant.Health(ctx); err != nil {
		if h.logger != nil {
			h.logger.Debug().Str("error", err.Error()).Msg("backend health check failed")
		}
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
