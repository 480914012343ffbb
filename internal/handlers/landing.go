package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/portfi/portfi-portal/internal/auth"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
	"github.com/portfi/portfi-portal/internal/format"
	"github.com/portfi/portfi-portal/internal/theme"
)

// PageHandler serves HTML pages rendered with Go templates and holds what
// every page shares: the session, the theme and the nav state.
type PageHandler struct {
	logger    *common.Logger
	templates *template.Template
	devMode   bool
	session   *auth.Context
	theme     *theme.Theme
	jwtSecret []byte
}

// NewPageHandler creates a new page handler that loads templates from the pages directory.
func NewPageHandler(logger *common.Logger, devMode bool, session *auth.Context, th *theme.Theme, jwtSecret []byte) *PageHandler {
	pagesDir := FindPagesDir()

	templates := template.Must(template.New("pages").Funcs(TemplateFuncs()).ParseGlob(filepath.Join(pagesDir, "*.html")))
	template.Must(templates.ParseGlob(filepath.Join(pagesDir, "partials", "*.html")))

	return &PageHandler{
		logger:    logger,
		templates: templates,
		devMode:   devMode,
		session:   session,
		theme:     th,
		jwtSecret: jwtSecret,
	}
}

// TemplateFuncs are the formatting helpers available to every page.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"currency":       format.Currency,
		"signedCurrency": format.SignedCurrency,
		"signedPercent":  format.SignedPercent,
		"percent":        format.Percent,
		"trend":          format.Trend,
		"inc":            func(i int) int { return i + 1 },
		"dict":           dict,
	}
}

// dict builds a map from alternating keys and values for sub-templates.
func dict(pairs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok {
			m[k] = pairs[i+1]
		}
	}
	return m
}

// FindPagesDir locates the directory holding the page templates. A candidate
// only counts when it contains home.html, so the internal/pages Go package
// is never mistaken for it.
func FindPagesDir() string {
	dirs := []string{
		"./pages",
		"../pages",
		"../../pages",
		".",
	}

	for _, dir := range dirs {
		if info, err := os.Stat(filepath.Join(dir, "home.html")); err == nil && !info.IsDir() {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}

	return "."
}

// baseData returns the values every template expects.
func (h *PageHandler) baseData(r *http.Request, page string) map[string]interface{} {
	id := auth.IdentityFromContext(r.Context())
	if id == nil && h.session != nil {
		id, _ = h.session.Authenticated(r, h.jwtSecret)
	}

	data := map[string]interface{}{
		"Page":          page,
		"DevMode":       h.devMode,
		"LoggedIn":      id != nil,
		"UserEmail":     "",
		"UserInitial":   "",
		"Theme":         "light",
		"CSRFToken":     CSRFToken(r),
		"PortalVersion": config.GetVersion(),
	}
	if id != nil {
		data["UserEmail"] = id.Email
		data["UserInitial"] = userInitial(id.Email)
	}
	if h.theme != nil {
		data["Theme"] = h.theme.Name()
	}
	return data
}

func userInitial(email string) string {
	if email == "" {
		return "U"
	}
	return strings.ToUpper(email[:1])
}

// render executes a template into a buffer and writes it with status.
func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		if h.logger != nil {
			h.logger.Error().Str("template", name).Str("error", err.Error()).Msg("failed to render page")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// ServePage creates a handler function for serving a specific page template.
func (h *PageHandler) ServePage(templateName string, pageName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, http.StatusOK, templateName, h.baseData(r, pageName))
	}
}

// StaticFileHandler serves static files (CSS, JS, images).
func (h *PageHandler) StaticFileHandler(w http.ResponseWriter, r *http.Request) {
	pagesDir := FindPagesDir()
	staticDir := filepath.Join(pagesDir, "static")

	path := strings.TrimPrefix(r.URL.Path, "/static/")
	fullPath := filepath.Join(staticDir, path)

	// Security: prevent directory traversal
	absStaticDir, _ := filepath.Abs(staticDir)
	absFullPath, _ := filepath.Abs(fullPath)
	if !strings.HasPrefix(absFullPath, absStaticDir+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
