package interfaces

import (
	"context"
	"errors"

	"github.com/portfi/portfi-portal/internal/models"
)

// Identity provider failures, shared by every backend.
var (
	ErrEmailInUse         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrUnavailable        = errors.New("identity service unavailable")
)

// IdentityProvider creates and verifies email/password credentials.
type IdentityProvider interface {
	CreateCredential(ctx context.Context, email, password string) (*models.Identity, error)
	VerifyCredential(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut(ctx context.Context, id *models.Identity) error
}

// ProfileStore reads and writes user profile documents. GetProfile returns
// (nil, nil) when the identity has no profile.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	PutProfile(ctx context.Context, userID string, profile models.UserProfile) error
}

// IdentityStore is a backend that serves both roles.
type IdentityStore interface {
	IdentityProvider
	ProfileStore
}
