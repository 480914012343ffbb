package handlers

import (
	"net/http"

	"github.com/portfi/portfi-portal/internal/auth"
	"github.com/portfi/portfi-portal/internal/common"
)

// ProfileHandler exposes the session state of the signed-in user.
type ProfileHandler struct {
	logger  *common.Logger
	session *auth.Context
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(logger *common.Logger, session *auth.Context) *ProfileHandler {
	return &ProfileHandler{logger: logger, session: session}
}

// ServeHTTP handles GET /api/profile.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, h.session.Snapshot())
}
