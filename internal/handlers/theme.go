package handlers

import (
	"net/http"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/theme"
)

// ThemeHandler toggles the portal theme.
type ThemeHandler struct {
	logger *common.Logger
	theme  *theme.Theme
}

// NewThemeHandler creates a new theme handler.
func NewThemeHandler(logger *common.Logger, th *theme.Theme) *ThemeHandler {
	return &ThemeHandler{logger: logger, theme: th}
}

// ServeHTTP handles GET /api/theme (current) and POST /api/theme/toggle.
func (h *ThemeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodPost:
		h.theme.Toggle(r.Context())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"theme": h.theme.Name(),
		"dark":  h.theme.Dark(),
	})
}
