// Package seed creates the dev accounts listed in import/users.json.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/interfaces"
	"github.com/portfi/portfi-portal/internal/models"
)

const (
	seedRetryAttempts = 3
	usersFileName     = "import/users.json"
)

// seedRetryDelay is a variable so tests can shorten it.
var seedRetryDelay = 2 * time.Second

// User is one dev account in the seed file.
type User struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dob"`
}

// usersFile is the JSON structure for the users seed file.
type usersFile struct {
	Users []User `json:"users"`
}

// DevUsers seeds dev accounts into store from import/users.json.
// Non-fatal: failures are logged and seeding is abandoned after retries.
func DevUsers(ctx context.Context, store interfaces.IdentityStore, logger *common.Logger) {
	path := findUsersFile()
	if path == "" {
		logger.Warn().Msg("seed: import/users.json not found, skipping dev user seeding")
		return
	}

	users, err := loadUsersFile(path)
	if err != nil {
		logger.Error().Str("error", err.Error()).Str("path", path).Msg("seed: failed to load users file")
		return
	}

	if len(users) == 0 {
		logger.Warn().Msg("seed: users file is empty, skipping dev user seeding")
		return
	}

	seedWithRetry(ctx, store, users, logger)
}

// findUsersFile searches for import/users.json relative to the executable
// directory first, then falls back to the current working directory.
func findUsersFile() string {
	if exe, err := os.Executable(); err == nil {
		p := filepath.Join(filepath.Dir(exe), usersFileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat(usersFileName); err == nil {
		return usersFileName
	}

	return ""
}

// loadUsersFile reads and parses the users JSON file.
func loadUsersFile(path string) ([]User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var f usersFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	return f.Users, nil
}

// seedWithRetry attempts to seed users with retries.
func seedWithRetry(ctx context.Context, store interfaces.IdentityStore, users []User, logger *common.Logger) {
	var err error
	for attempt := 1; attempt <= seedRetryAttempts; attempt++ {
		var created int
		created, err = seedAll(ctx, store, users, logger)
		if err == nil {
			logger.Info().Int("users", len(users)).Int("created", created).Msg("seed: dev users seeded successfully")
			return
		}
		logger.Warn().
			Int("attempt", attempt).
			Int("max_attempts", seedRetryAttempts).
			Str("error", err.Error()).
			Msg("seed: failed to seed users, retrying")
		if attempt < seedRetryAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(seedRetryDelay):
			}
		}
	}

	logger.Warn().
		Int("attempts", seedRetryAttempts).
		Str("error", err.Error()).
		Msg("seed: failed to seed dev users after retries, continuing without seeding")
}

// seedAll creates each missing account with its profile document.
// Accounts that already exist are left alone.
func seedAll(ctx context.Context, store interfaces.IdentityStore, users []User, logger *common.Logger) (int, error) {
	created := 0
	for _, u := range users {
		email := strings.TrimSpace(u.Email)
		if email == "" {
			continue
		}
		id, err := store.CreateCredential(ctx, email, u.Password)
		if errors.Is(err, interfaces.ErrEmailInUse) {
			logger.Debug().Str("email", email).Msg("seed: user already exists, skipping")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("create %s: %w", email, err)
		}

		profile := models.UserProfile{
			Name:      u.Name,
			Email:     email,
			DOB:       u.DateOfBirth,
			CreatedAt: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		}
		if err := store.PutProfile(ctx, id.ID, profile); err != nil {
			return created, fmt.Errorf("profile %s: %w", email, err)
		}
		created++
		logger.Debug().Str("email", email).Msg("seed: created user")
	}
	return created, nil
}
