package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/portfi/portfi-portal/internal/auth"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/pages"
)

// AuthHandler serves the login/register page and its form posts.
type AuthHandler struct {
	logger    *common.Logger
	pages     *PageHandler
	session   *auth.Context
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(logger *common.Logger, pages *PageHandler, session *auth.Context, jwtSecret []byte, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthHandler{
		logger:    logger,
		pages:     pages,
		session:   session,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		now:       time.Now,
	}
}

// LoginPage serves GET /login and GET /signup in the given mode.
// An already authenticated browser goes straight to the dashboard.
func (h *AuthHandler) LoginPage(mode pages.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		if _, ok := h.session.Authenticated(r, h.jwtSecret); ok {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		h.renderForm(w, r, pages.NewLoginForm(mode), http.StatusOK)
	}
}

// HandleLogin handles POST /auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, pages.ModeLogin)
}

// HandleRegister handles POST /auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, pages.ModeRegister)
}

func (h *AuthHandler) submit(w http.ResponseWriter, r *http.Request, mode pages.Mode) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := pages.NewLoginForm(mode)
	form.Name = r.FormValue("name")
	form.Email = r.FormValue("email")
	form.Password = r.FormValue("password")
	form.ConfirmPassword = r.FormValue("confirmPassword")
	form.DateOfBirth = r.FormValue("dateOfBirth")

	id, err := form.Submit(r.Context(), h.session, h.now())
	if err != nil {
		var verrs pages.ValidationErrors
		status := http.StatusUnauthorized
		if errors.As(err, &verrs) {
			status = http.StatusBadRequest
		} else if h.logger != nil {
			h.logger.Warn().Str("mode", string(mode)).Str("error", err.Error()).Msg("authentication failed")
		}
		h.renderForm(w, r, form, status)
		return
	}

	token, err := auth.MintSessionToken(id, h.jwtSecret, h.ttl)
	if err != nil {
		if h.logger != nil {
			h.logger.Error().Str("error", err.Error()).Msg("failed to mint session token")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	auth.SetSessionCookie(w, token, h.ttl)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// HandleLogout handles POST /auth/logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := h.session.Logout(r.Context()); err != nil && h.logger != nil {
		h.logger.Warn().Str("error", err.Error()).Msg("logout failed")
	}
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) renderForm(w http.ResponseWriter, r *http.Request, form *pages.LoginForm, status int) {
	data := h.pages.baseData(r, "login")
	data["Form"] = form
	h.pages.render(w, status, "login.html", data)
}
