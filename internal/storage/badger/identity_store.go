package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/interfaces"
	"github.com/portfi/portfi-portal/internal/models"
	"github.com/timshannon/badgerhold/v4"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength mirrors the hosted identity service's own floor.
const minPasswordLength = 6

// IdentityStore is the local identity backend: bcrypt-hashed accounts and
// profile documents in Badger.
type IdentityStore struct {
	db     *BadgerDB
	logger *common.Logger
}

// NewIdentityStore creates a local identity store on db.
func NewIdentityStore(db *BadgerDB, logger *common.Logger) *IdentityStore {
	return &IdentityStore{db: db, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *IdentityStore) findByEmail(email string) (*models.Account, error) {
	var accounts []models.Account
	if err := s.db.Store().Find(&accounts, badgerhold.Where("Email").Eq(email).Index("Email")); err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}

// CreateCredential registers a new account.
func (s *IdentityStore) CreateCredential(_ context.Context, email, password string) (*models.Identity, error) {
	email = normalizeEmail(email)
	if len(password) < minPasswordLength {
		return nil, interfaces.ErrWeakPassword
	}

	existing, err := s.findByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, interfaces.ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.db.Store().Insert(account.ID, &account); err != nil {
		return nil, fmt.Errorf("failed to store account: %w", err)
	}

	s.logger.Debug().Str("user_id", account.ID).Msg("local account created")
	return &models.Identity{ID: account.ID, Email: email}, nil
}

// VerifyCredential checks an email/password pair.
func (s *IdentityStore) VerifyCredential(_ context.Context, email, password string) (*models.Identity, error) {
	account, err := s.findByEmail(normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, interfaces.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, interfaces.ErrInvalidCredentials
	}
	return &models.Identity{ID: account.ID, Email: account.Email}, nil
}

// SignOut is a no-op locally; sessions live in the portal's cookie.
func (s *IdentityStore) SignOut(_ context.Context, _ *models.Identity) error {
	return nil
}

// GetProfile returns the profile document of userID, or nil when absent.
func (s *IdentityStore) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	var rec models.ProfileRecord
	if err := s.db.Store().Get(userID, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profile %s: %w", userID, err)
	}
	return &rec.Profile, nil
}

// PutProfile writes the profile document of userID.
func (s *IdentityStore) PutProfile(_ context.Context, userID string, profile models.UserProfile) error {
	if err := s.db.Store().Upsert(userID, &models.ProfileRecord{UserID: userID, Profile: profile}); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", userID, err)
	}
	return nil
}
