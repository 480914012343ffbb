package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/interfaces"
	"github.com/portfi/portfi-portal/internal/models"
)

type memStore struct {
	mu        sync.Mutex
	accounts  map[string]string
	profiles  map[string]models.UserProfile
	createErr error
	calls     int
}

func newMemStore() *memStore {
	return &memStore{accounts: map[string]string{}, profiles: map[string]models.UserProfile{}}
}

func (m *memStore) CreateCredential(_ context.Context, email, password string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.accounts[email]; ok {
		return nil, interfaces.ErrEmailInUse
	}
	m.accounts[email] = password
	return &models.Identity{ID: "uid-" + email, Email: email}, nil
}

func (m *memStore) VerifyCredential(context.Context, string, string) (*models.Identity, error) {
	return nil, interfaces.ErrInvalidCredentials
}

func (m *memStore) SignOut(context.Context, *models.Identity) error { return nil }

func (m *memStore) GetProfile(_ context.Context, id string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) PutProfile(_ context.Context, id string, p models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[id] = p
	return nil
}

func writeUsers(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadUsersFile_Valid(t *testing.T) {
	path := writeUsers(t, `{"users":[{"name":"Alice","email":"alice@example.com","password":"Passw0rd!","dob":"1990-01-01"}]}`)

	users, err := loadUsersFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Email != "alice@example.com" || users[0].DateOfBirth != "1990-01-01" {
		t.Errorf("unexpected user %+v", users[0])
	}
}

func TestLoadUsersFile_InvalidJSON(t *testing.T) {
	if _, err := loadUsersFile(writeUsers(t, "not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoadUsersFile_NotFound(t *testing.T) {
	if _, err := loadUsersFile("/nonexistent/path/users.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSeedAll_CreatesMissingOnly(t *testing.T) {
	store := newMemStore()
	store.accounts["bob@example.com"] = "old"

	users := []User{
		{Name: "Alice", Email: "alice@example.com", Password: "Passw0rd!", DateOfBirth: "1990-01-01"},
		{Name: "Bob", Email: "bob@example.com", Password: "Passw0rd!"},
		{Name: "Blank"},
	}
	created, err := seedAll(t.Context(), store, users, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 1 {
		t.Errorf("expected 1 created, got %d", created)
	}
	if store.accounts["bob@example.com"] != "old" {
		t.Error("existing account must not be changed")
	}
	p := store.profiles["uid-alice@example.com"]
	if p.Name != "Alice" || p.DOB != "1990-01-01" || p.CreatedAt == "" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestSeedWithRetry_GivesUp(t *testing.T) {
	old := seedRetryDelay
	seedRetryDelay = time.Millisecond
	defer func() { seedRetryDelay = old }()

	store := newMemStore()
	store.createErr = errors.New("identity service unavailable")

	seedWithRetry(t.Context(), store, []User{{Email: "a@example.com", Password: "x"}}, common.NewSilentLogger())
	if store.calls != seedRetryAttempts {
		t.Errorf("expected %d attempts, got %d", seedRetryAttempts, store.calls)
	}
}
