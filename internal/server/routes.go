package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/portfi/portfi-portal/internal/pages"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() chi.Router {
	a := s.app
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.correlationIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.maxBodySizeMiddleware(1 << 20)) // 1MB limit
	r.Use(s.csrfMiddleware)
	r.Use(s.recoveryMiddleware)

	// Public pages
	r.HandleFunc("/", a.HomeHandler.ServeHTTP)
	r.HandleFunc("/login", a.AuthHandler.LoginPage(pages.ModeLogin))
	r.HandleFunc("/signup", a.AuthHandler.LoginPage(pages.ModeRegister))
	r.HandleFunc("/auth/login", a.AuthHandler.HandleLogin)
	r.HandleFunc("/auth/register", a.AuthHandler.HandleRegister)

	// Static files (CSS, JS, images)
	r.Get("/static/*", a.PageHandler.StaticFileHandler)

	// Public API
	r.HandleFunc("/api/health", a.HealthHandler.ServeHTTP)
	r.HandleFunc("/api/version", a.VersionHandler.ServeHTTP)
	r.HandleFunc("/api/server-health", a.ServerHealthHandler.ServeHTTP)
	r.HandleFunc("/api/theme", a.ThemeHandler.ServeHTTP)
	r.Post("/api/theme/toggle", a.ThemeHandler.ServeHTTP)
	r.HandleFunc("/api/search", a.MarketHandler.Search)
	r.Route("/api/market", func(r chi.Router) {
		r.HandleFunc("/indices", a.MarketHandler.Indices())
		r.HandleFunc("/trending", a.MarketHandler.Trending())
		r.HandleFunc("/overview", a.MarketHandler.Overview())
		r.HandleFunc("/portfolio", a.MarketHandler.Portfolio())
		r.HandleFunc("/watchlist", a.MarketHandler.Watchlist())
		r.HandleFunc("/recommendations", a.MarketHandler.Recommendations())
		r.HandleFunc("/sectors", a.MarketHandler.Sectors())
		r.HandleFunc("/news", a.MarketHandler.News)
		r.HandleFunc("/instruments", a.MarketHandler.Instruments)
		r.NotFound(s.handleNotFound)
	})

	// Featured instrument rotation
	r.Get("/ws/rotation", a.FeedHandler.ServeHTTP)

	// MCP endpoint (JSON-RPC over HTTP), authenticates on its own
	if a.MCPHandler != nil {
		r.Handle("/mcp", a.MCPHandler)
	}

	// Signed-in only
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.HandleFunc("/dashboard", a.DashboardHandler.ServeHTTP)
		r.Get("/portfolio-analysis", a.PortfolioHandler.HandlePage)
		r.Post("/portfolio-analysis", a.PortfolioHandler.HandleForm)
		r.Get("/assistant", a.ChatHandler.HandlePage)
		r.Post("/assistant", a.ChatHandler.HandleForm)
		r.HandleFunc("/auth/logout", a.AuthHandler.HandleLogout)

		r.HandleFunc("/api/chat", a.ChatHandler.HandleSend)
		r.HandleFunc("/api/chat/messages", a.ChatHandler.HandleMessages)
		r.HandleFunc("/api/portfolio", a.PortfolioHandler.HandleState)
		r.HandleFunc("/api/portfolio/analyze", a.PortfolioHandler.HandleAnalyze)
		r.HandleFunc("/api/portfolio/prices", a.PortfolioHandler.HandlePrices)
		r.HandleFunc("/api/profile", a.ProfileHandler.ServeHTTP)
	})

	r.NotFound(s.handleNotFound)

	return r
}

// handleNotFound returns a JSON 404 for unmatched API routes and sends
// everything else back to the home page.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
