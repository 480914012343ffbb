package handlers

import (
	"net/http"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/market"
	"github.com/portfi/portfi-portal/internal/pages"
)

// HomeHandler serves the market overview page.
type HomeHandler struct {
	logger    *common.Logger
	pages     *PageHandler
	provider  *market.Provider
	catalog   *market.Catalog
	newsLimit int
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(logger *common.Logger, pages *PageHandler, provider *market.Provider, catalog *market.Catalog, newsLimit int) *HomeHandler {
	return &HomeHandler{logger: logger, pages: pages, provider: provider, catalog: catalog, newsLimit: newsLimit}
}

// ServeHTTP handles GET /. The optional q parameter searches the catalog.
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	view, err := pages.BuildHome(r.Context(), h.provider, h.catalog, h.newsLimit, r.URL.Query().Get("q"))
	if err != nil {
		if h.logger != nil {
			h.logger.Error().Str("error", err.Error()).Msg("failed to build home page")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := h.pages.baseData(r, "home")
	data["View"] = view
	h.pages.render(w, http.StatusOK, "home.html", data)
}
