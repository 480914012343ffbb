package handlers

import (
	"net/http"

	"github.com/portfi/portfi-portal/internal/auth"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/market"
	"github.com/portfi/portfi-portal/internal/pages"
)

// DashboardHandler serves the portfolio dashboard.
type DashboardHandler struct {
	logger   *common.Logger
	pages    *PageHandler
	session  *auth.Context
	provider *market.Provider
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(logger *common.Logger, pages *PageHandler, session *auth.Context, provider *market.Provider) *DashboardHandler {
	return &DashboardHandler{logger: logger, pages: pages, session: session, provider: provider}
}

// ServeHTTP renders the dashboard page.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	view, err := pages.BuildDashboard(r.Context(), h.provider)
	if err != nil {
		if h.logger != nil {
			h.logger.Error().Str("error", err.Error()).Msg("failed to build dashboard")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := h.pages.baseData(r, "dashboard")
	data["View"] = view
	data["Profile"] = h.session.Profile()
	data["AuthError"] = h.session.Error()
	h.pages.render(w, http.StatusOK, "dashboard.html", data)
}
