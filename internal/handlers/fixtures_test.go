package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/portfi/portfi-portal/internal/auth"
	"github.com/portfi/portfi-portal/internal/interfaces"
	"github.com/portfi/portfi-portal/internal/models"
	"github.com/portfi/portfi-portal/internal/pages"
	"github.com/portfi/portfi-portal/internal/theme"
)

var testSecret = []byte("test-secret")

// memStore is an in-memory identity provider and profile store.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]string
	profiles map[string]models.UserProfile
}

func newMemStore() *memStore {
	return &memStore{accounts: map[string]string{}, profiles: map[string]models.UserProfile{}}
}

func (m *memStore) CreateCredential(_ context.Context, email, password string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[email]; ok {
		return nil, interfaces.ErrEmailInUse
	}
	m.accounts[email] = password
	return &models.Identity{ID: "uid-" + email, Email: email}, nil
}

func (m *memStore) VerifyCredential(_ context.Context, email, password string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.accounts[email]; !ok || p != password {
		return nil, interfaces.ErrInvalidCredentials
	}
	return &models.Identity{ID: "uid-" + email, Email: email}, nil
}

func (m *memStore) SignOut(context.Context, *models.Identity) error { return nil }

func (m *memStore) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) PutProfile(_ context.Context, userID string, p models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = p
	return nil
}

// fakeAssistant answers every message with reply.
type fakeAssistant struct {
	reply     string
	err       error
	healthErr error
}

func (f *fakeAssistant) Reply(context.Context, models.ChatRequest) (string, error) {
	return f.reply, f.err
}

func (f *fakeAssistant) Health(context.Context) error { return f.healthErr }

// fakeAnalyzer returns result or err.
type fakeAnalyzer struct {
	result *models.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(context.Context, models.AnalysisRequest) (*models.AnalysisResult, error) {
	return f.result, f.err
}

// fixture bundles a page handler with an unmounted auth context.
type fixture struct {
	store   *memStore
	session *auth.Context
	pages   *PageHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	session := auth.NewContext(store, store, nil)
	return &fixture{
		store:   store,
		session: session,
		pages:   NewPageHandler(nil, true, session, theme.New(context.Background(), nil, nil), testSecret),
	}
}

// signIn registers and logs in email, returning a request cookie for it.
func (f *fixture) signIn(t *testing.T, email string) *http.Cookie {
	t.Helper()
	id, err := f.session.Register(context.Background(), email, "Passw0rd!", "Test User", "1990-01-01")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := auth.MintSessionToken(id, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookie, Value: token}
}

func newRegistry(a *fakeAssistant, an *fakeAnalyzer) *pages.Registry {
	return pages.NewRegistry(func() (*pages.ChatPage, *pages.PortfolioPage) {
		return pages.NewChatPage(a, nil), pages.NewPortfolioPage(an, pages.DefaultPeriod, nil)
	}, time.Minute)
}

// workspaceCookie returns the workspace cookie set by a response.
func workspaceCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == pages.WorkspaceCookie {
			return c
		}
	}
	t.Fatal("workspace cookie not set")
	return nil
}
