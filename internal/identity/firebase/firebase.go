// Package firebase implements the hosted identity backend over the Identity
// Toolkit and Firestore REST APIs.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
	"github.com/portfi/portfi-portal/internal/interfaces"
	"github.com/portfi/portfi-portal/internal/models"
)

// Store is an interfaces.IdentityStore backed by Firebase. Profile
// documents live at users/{uid} and are read with the owner's ID token.
type Store struct {
	identityURL  string
	firestoreURL string
	apiKey       string
	projectID    string
	httpClient   *http.Client
	logger       *common.Logger

	mu     sync.RWMutex
	tokens map[string]string
}

// New creates a Firebase-backed store.
func New(cfg config.IdentityConfig, logger *common.Logger) *Store {
	return &Store{
		identityURL:  strings.TrimRight(cfg.IdentityURL, "/"),
		firestoreURL: strings.TrimRight(cfg.FirestoreURL, "/"),
		apiKey:       cfg.APIKey,
		projectID:    cfg.ProjectID,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
		tokens:       make(map[string]string),
	}
}

type authResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// mapError translates Identity Toolkit error codes.
func mapError(status int, body []byte) error {
	var e apiError
	if json.Unmarshal(body, &e) != nil || e.Error.Message == "" {
		return fmt.Errorf("%w: status %d", interfaces.ErrUnavailable, status)
	}
	code, _, _ := strings.Cut(e.Error.Message, " ")
	switch code {
	case "EMAIL_EXISTS":
		return interfaces.ErrEmailInUse
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return interfaces.ErrInvalidCredentials
	case "WEAK_PASSWORD":
		return interfaces.ErrWeakPassword
	case "INVALID_EMAIL":
		return fmt.Errorf("invalid email address")
	}
	if status >= 500 {
		return fmt.Errorf("%w: %s", interfaces.ErrUnavailable, e.Error.Message)
	}
	return fmt.Errorf("identity service: %s", e.Error.Message)
}

func (s *Store) send(ctx context.Context, method, endpoint, token string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", interfaces.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (s *Store) authenticate(ctx context.Context, action, email, password string) (*models.Identity, error) {
	endpoint := fmt.Sprintf("%s/accounts:%s?key=%s", s.identityURL, action, url.QueryEscape(s.apiKey))
	status, body, err := s.send(ctx, http.MethodPost, endpoint, "", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, mapError(status, body)
	}

	var ar authResponse
	if err := json.Unmarshal(body, &ar); err != nil || ar.LocalID == "" {
		return nil, fmt.Errorf("%w: malformed %s response", interfaces.ErrUnavailable, action)
	}

	s.mu.Lock()
	s.tokens[ar.LocalID] = ar.IDToken
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug().Str("action", action).Str("user_id", ar.LocalID).Msg("firebase authentication succeeded")
	}
	return &models.Identity{ID: ar.LocalID, Email: ar.Email, Token: ar.IDToken}, nil
}

// CreateCredential signs up a new account.
func (s *Store) CreateCredential(ctx context.Context, email, password string) (*models.Identity, error) {
	return s.authenticate(ctx, "signUp", email, password)
}

// VerifyCredential signs in with email and password.
func (s *Store) VerifyCredential(ctx context.Context, email, password string) (*models.Identity, error) {
	return s.authenticate(ctx, "signInWithPassword", email, password)
}

// SignOut forgets the identity's ID token.
func (s *Store) SignOut(_ context.Context, id *models.Identity) error {
	if id == nil {
		return nil
	}
	s.mu.Lock()
	delete(s.tokens, id.ID)
	s.mu.Unlock()
	return nil
}

func (s *Store) documentURL(userID string) string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/users/%s",
		s.firestoreURL, url.PathEscape(s.projectID), url.PathEscape(userID))
}

func (s *Store) token(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[userID]
}

type stringValue struct {
	StringValue string `json:"stringValue"`
}

type document struct {
	Fields map[string]stringValue `json:"fields"`
}

// GetProfile reads users/{userID}; a missing document yields (nil, nil).
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	status, body, err := s.send(ctx, http.MethodGet, s.documentURL(userID), s.token(userID), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("firestore returned %d", status)
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile document: %w", err)
	}
	return &models.UserProfile{
		Name:      doc.Fields["name"].StringValue,
		Email:     doc.Fields["email"].StringValue,
		DOB:       doc.Fields["dob"].StringValue,
		CreatedAt: doc.Fields["createdAt"].StringValue,
	}, nil
}

// PutProfile writes users/{userID}.
func (s *Store) PutProfile(ctx context.Context, userID string, p models.UserProfile) error {
	doc := document{Fields: map[string]stringValue{
		"name":      {p.Name},
		"email":     {p.Email},
		"dob":       {p.DOB},
		"createdAt": {p.CreatedAt},
	}}
	status, body, err := s.send(ctx, http.MethodPatch, s.documentURL(userID), s.token(userID), doc)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("firestore write returned %d: %s", status, strings.TrimSpace(string(body)))
	}
	return nil
}
