// Package mcp exposes FinBot, portfolio analysis and the sample market
// data as MCP tools over streamable HTTP.
package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/portfi/portfi-portal/internal/analysis"
	"github.com/portfi/portfi-portal/internal/assistant"
	"github.com/portfi/portfi-portal/internal/auth"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
	"github.com/portfi/portfi-portal/internal/market"
)

// Deps are the services the tools call.
type Deps struct {
	Assistant assistant.Assistant
	Analyzer  analysis.Analyzer
	Provider  *market.Provider
	Catalog   *market.Catalog
}

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *server.StreamableHTTPServer
	logger     *common.Logger
	jwtSecret  []byte
}

// NewHandler registers the PortFi tools and creates the MCP handler.
func NewHandler(deps Deps, jwtSecret []byte, logger *common.Logger) *Handler {
	srv := server.NewMCPServer(
		"portfi-portal",
		config.GetVersion(),
		server.WithToolCapabilities(true),
	)
	n := RegisterTools(srv, deps, logger)

	streamable := server.NewStreamableHTTPServer(srv,
		server.WithStateLess(true),
	)

	if logger != nil {
		logger.Info().Int("tools", n).Msg("MCP handler initialized")
	}

	return &Handler{
		streamable: streamable,
		logger:     logger,
		jwtSecret:  jwtSecret,
	}
}

// ServeHTTP attaches the caller's identity and delegates to the
// StreamableHTTPServer. Calls without a valid session token get 401.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = h.withUserContext(r)

	if _, ok := GetUserContext(r.Context()); !ok {
		w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="%s"`, sanitizeHost(r.Host)))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "unauthorized",
			"error_description": "Authentication required to access MCP endpoint",
		})
		return
	}

	h.streamable.ServeHTTP(w, r)
}

// sanitizeHost strips CR, LF and quotes from the Host header before it is
// echoed in a response header.
func sanitizeHost(host string) string {
	host = strings.ReplaceAll(host, "\r", "")
	host = strings.ReplaceAll(host, "\n", "")
	host = strings.ReplaceAll(host, `"`, "")
	return host
}

// withUserContext reads the identity from a Bearer token or the session
// cookie. Bearer takes priority. Any failure leaves r unchanged.
func (h *Handler) withUserContext(r *http.Request) *http.Request {
	if id := auth.IdentityFromContext(r.Context()); id != nil {
		return r.WithContext(WithUserContext(r.Context(), UserContext{UserID: id.ID, Email: id.Email}))
	}

	var token string
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	} else if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		return r
	}

	claims, err := auth.ValidateSessionToken(token, h.jwtSecret)
	if err != nil || claims.Sub == "" {
		if h.logger != nil {
			h.logger.Debug().Str("error", fmt.Sprint(err)).Msg("rejected MCP session token")
		}
		return r
	}
	return r.WithContext(WithUserContext(r.Context(), UserContext{UserID: claims.Sub, Email: claims.Email}))
}
