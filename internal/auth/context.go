// Package auth holds the portal's authenticated identity and its profile.
//
// A Context owns at most one identity. Operations delegate to an identity
// provider and announce identity changes on a Notifier; a single loop
// goroutine consumes those announcements and is the only writer of the
// identity/profile cache, so readers always see a settled pair.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/interfaces"
	"github.com/portfi/portfi-portal/internal/models"
)

// State is a consistent snapshot of a Context.
type State struct {
	Identity      *models.Identity    `json:"identity"`
	Profile       *models.UserProfile `json:"profile"`
	Authenticated bool                `json:"authenticated"`
	Loading       bool                `json:"loading"`
	Error         string              `json:"error,omitempty"`
}

// Context is the process-wide authentication state.
type Context struct {
	provider interfaces.IdentityProvider
	profiles interfaces.ProfileStore
	notifier *Notifier
	logger   *common.Logger
	now      func() time.Time

	mu       sync.RWMutex
	identity *models.Identity
	profile  *models.UserProfile
	loading  bool
	errMsg   string

	lifeMu      sync.RWMutex
	running     bool
	unsubscribe func()
	stop        chan struct{}
	done        chan struct{}
	cancel      context.CancelFunc

	pendMu  sync.Mutex
	pending int
	idle    chan struct{}
}

// NewContext creates an unmounted Context.
func NewContext(provider interfaces.IdentityProvider, profiles interfaces.ProfileStore, logger *common.Logger) *Context {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	idle := make(chan struct{})
	close(idle)
	return &Context{
		provider: provider,
		profiles: profiles,
		notifier: NewNotifier(),
		logger:   logger,
		now:      time.Now,
		loading:  true,
		idle:     idle,
	}
}

// Start subscribes to identity changes and runs the loop until Stop.
// It announces the current identity so Loading settles.
func (c *Context) Start(ctx context.Context) {
	c.lifeMu.Lock()
	if c.running {
		c.lifeMu.Unlock()
		return
	}

	events, unsubscribe := c.notifier.Subscribe()
	loopCtx, cancel := context.WithCancel(ctx)
	c.running = true
	c.unsubscribe = unsubscribe
	c.cancel = cancel
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.loop(loopCtx, events, c.stop, c.done)
	c.lifeMu.Unlock()

	c.logger.Debug().Msg("auth context started")
	c.publish(Event{Identity: c.CurrentIdentity()})
}

// Stop unsubscribes and waits for the loop to exit.
func (c *Context) Stop() {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if !c.running {
		return
	}

	c.running = false
	c.unsubscribe()
	close(c.stop)
	c.cancel()
	<-c.done

	c.pendMu.Lock()
	if c.pending > 0 {
		c.pending = 0
		close(c.idle)
	}
	c.pendMu.Unlock()

	c.logger.Debug().Msg("auth context stopped")
}

// Subscribe exposes identity-change notifications to other components.
func (c *Context) Subscribe() (<-chan Event, func()) {
	return c.notifier.Subscribe()
}

func (c *Context) loop(ctx context.Context, events <-chan Event, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case ev := <-events:
			c.apply(ctx, ev)
			c.settle()
		}
	}
}

// publish announces ev. Without a running loop the change is applied inline.
func (c *Context) publish(ev Event) {
	c.lifeMu.RLock()
	defer c.lifeMu.RUnlock()

	if !c.running {
		c.apply(context.Background(), ev)
		return
	}

	c.pendMu.Lock()
	if c.pending == 0 {
		c.idle = make(chan struct{})
	}
	c.pending++
	c.pendMu.Unlock()

	c.notifier.Publish(ev)
}

func (c *Context) settle() {
	c.pendMu.Lock()
	defer c.pendMu.Unlock()
	if c.pending == 0 {
		return
	}
	c.pending--
	if c.pending == 0 {
		close(c.idle)
	}
}

// apply is the identity-change callback: it mirrors the profile document
// of the new identity into the cache.
func (c *Context) apply(ctx context.Context, ev Event) {
	if ev.Identity == nil {
		c.mu.Lock()
		c.identity = nil
		c.profile = nil
		c.loading = false
		c.mu.Unlock()
		c.logger.Debug().Msg("identity cleared")
		return
	}

	profile, err := c.profiles.GetProfile(ctx, ev.Identity.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = ev.Identity
	c.loading = false
	if err != nil {
		c.profile = nil
		c.errMsg = msgProfileFetch
		c.logger.Error().Str("user_id", ev.Identity.ID).Err(err).Msg("failed to fetch user profile")
		return
	}
	c.profile = profile
	if profile == nil {
		c.logger.Debug().Str("user_id", ev.Identity.ID).Msg("no profile document for identity")
	} else {
		c.logger.Debug().Str("user_id", ev.Identity.ID).Msg("user profile loaded")
	}
}

// WaitSettled blocks until every announced identity change has been applied.
func (c *Context) WaitSettled(ctx context.Context) error {
	c.pendMu.Lock()
	idle := c.idle
	c.pendMu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register creates a credential, stores the profile document and signs in.
func (c *Context) Register(ctx context.Context, email, password, name, dob string) (*models.Identity, error) {
	c.logger.Info().Str("email", email).Msg("registering user")
	c.setError("")

	id, err := c.provider.CreateCredential(ctx, email, password)
	if err != nil {
		return c.fail("register", err, msgRegister)
	}

	profile := models.UserProfile{
		Name:      name,
		Email:     email,
		DOB:       dob,
		CreatedAt: c.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	if err := c.profiles.PutProfile(ctx, id.ID, profile); err != nil {
		return c.fail("register", err, msgRegister)
	}

	c.logger.Info().Str("user_id", id.ID).Msg("user registered")
	c.publish(Event{Identity: id})
	return id, nil
}

// Login verifies credentials. The session is populated by the loop.
func (c *Context) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	c.logger.Info().Str("email", email).Msg("logging in user")
	c.setError("")

	id, err := c.provider.VerifyCredential(ctx, email, password)
	if err != nil {
		return c.fail("login", err, msgLogin)
	}

	c.logger.Info().Str("user_id", id.ID).Msg("login successful")
	c.publish(Event{Identity: id})
	return id, nil
}

// Logout ends the session and clears the cached profile.
func (c *Context) Logout(ctx context.Context) error {
	c.logger.Info().Msg("logging out user")
	c.setError("")

	if err := c.provider.SignOut(ctx, c.CurrentIdentity()); err != nil {
		_, err = c.fail("logout", err, msgLogout)
		return err
	}

	c.mu.Lock()
	c.profile = nil
	c.mu.Unlock()

	c.publish(Event{})
	c.logger.Info().Msg("logout successful")
	return nil
}

// Signup creates a bare credential without a profile document.
func (c *Context) Signup(ctx context.Context, email, password string) (*models.Identity, error) {
	id, err := c.provider.CreateCredential(ctx, email, password)
	if err != nil {
		c.logger.Warn().Str("email", email).Err(err).Msg("signup failed")
		return nil, wrap("signup", err)
	}
	c.publish(Event{Identity: id})
	return id, nil
}

func (c *Context) fail(op string, err error, fallback string) (*models.Identity, error) {
	c.setError(messageOr(err, fallback))
	c.logger.Warn().Str("op", op).Err(err).Msg("auth operation failed")
	return nil, wrap(op, err)
}

func (c *Context) setError(msg string) {
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
}

// CurrentIdentity returns the active identity or nil.
func (c *Context) CurrentIdentity() *models.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// Profile returns the cached profile of the active identity, or nil.
func (c *Context) Profile() *models.UserProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// IsAuthenticated reports whether an identity is present.
func (c *Context) IsAuthenticated() bool {
	return c.CurrentIdentity() != nil
}

// Loading is true until the first identity change settles and while
// announced changes are still being applied.
func (c *Context) Loading() bool {
	c.pendMu.Lock()
	pending := c.pending
	c.pendMu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading || pending > 0
}

// Error returns the last surfaced error message.
func (c *Context) Error() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Snapshot returns the current state.
func (c *Context) Snapshot() State {
	loading := c.Loading()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Identity:      c.identity,
		Profile:       c.profile,
		Authenticated: c.identity != nil,
		Loading:       loading,
		Error:         c.errMsg,
	}
}
