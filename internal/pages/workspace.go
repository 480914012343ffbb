package pages

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WorkspaceCookie names the cookie that identifies a browser's workspace.
const WorkspaceCookie = "portfi_ws"

// WorkspaceTTL is how long an idle workspace is kept.
const WorkspaceTTL = 30 * time.Minute

// Workspace holds one browser's page instances.
type Workspace struct {
	ID        string
	Chat      *ChatPage
	Portfolio *PortfolioPage
	lastSeen  time.Time
}

// Factory builds the pages of a new workspace.
type Factory func() (*ChatPage, *PortfolioPage)

// Registry maps workspace cookies to page instances.
type Registry struct {
	factory Factory
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

// NewRegistry creates an empty Registry.
func NewRegistry(factory Factory, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = WorkspaceTTL
	}
	return &Registry{
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[string]*Workspace),
	}
}

// Get returns a live workspace by ID.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if now.After(ws.lastSeen.Add(r.ttl)) {
		delete(r.items, id)
		return nil, false
	}
	ws.lastSeen = now
	return ws, true
}

// Resolve returns the request's workspace, creating one and setting the
// cookie when the request has none or it expired.
func (r *Registry) Resolve(w http.ResponseWriter, req *http.Request) *Workspace {
	if c, err := req.Cookie(WorkspaceCookie); err == nil {
		if ws, ok := r.Get(c.Value); ok {
			return ws
		}
	}

	chat, portfolio := r.factory()
	ws := &Workspace{
		ID:        uuid.New().String(),
		Chat:      chat,
		Portfolio: portfolio,
		lastSeen:  r.now(),
	}
	r.mu.Lock()
	r.items[ws.ID] = ws
	r.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     WorkspaceCookie,
		Value:    ws.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ws
}

// Len returns the number of stored workspaces, live or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Cleanup removes expired workspaces.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, ws := range r.items {
		if now.After(ws.lastSeen.Add(r.ttl)) {
			delete(r.items, id)
		}
	}
}
