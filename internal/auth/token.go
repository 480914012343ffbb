package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/portfi/portfi-portal/internal/models"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "portfi_session"

const tokenIssuer = "portfi-portal"

// Claims is the decoded session token payload.
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Iss   string `json:"iss"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
}

// MintSessionToken signs an HMAC-SHA256 JWT for id.
func MintSessionToken(id *models.Identity, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	claimsJSON, err := json.Marshal(Claims{
		Sub:   id.ID,
		Email: id.Email,
		Iss:   tokenIssuer,
		Iat:   now.Unix(),
		Exp:   now.Add(ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session claims: %w", err)
	}
	payload := base64.RawURLEncoding.EncodeToString(claimsJSON)

	sigInput := header + "." + payload
	return sigInput + "." + sign(sigInput, secret), nil
}

func sign(input string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSessionToken verifies the signature and expiry of token.
func ValidateSessionToken(token string, secret []byte) (*Claims, error) {
	parts := strings.SplitN(token, ".", 4)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid token format: expected 3 parts, got %d", len(parts))
	}

	expected := sign(parts[0]+"."+parts[1], secret)
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, fmt.Errorf("invalid token signature")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid token payload encoding: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("invalid token payload JSON: %w", err)
	}
	if claims.Exp == 0 {
		return nil, fmt.Errorf("token missing exp claim")
	}
	if claims.Exp < time.Now().Unix() {
		return nil, fmt.Errorf("token expired")
	}
	return &claims, nil
}

// ClaimsFromRequest validates the session cookie of r.
func ClaimsFromRequest(r *http.Request, secret []byte) (*Claims, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := ValidateSessionToken(cookie.Value, secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authenticated reports whether r carries a valid session for the
// identity currently held by c.
func (c *Context) Authenticated(r *http.Request, secret []byte) (*models.Identity, bool) {
	claims, ok := ClaimsFromRequest(r, secret)
	if !ok {
		return nil, false
	}
	id := c.CurrentIdentity()
	if id == nil || id.ID != claims.Sub {
		return nil, false
	}
	return id, true
}
