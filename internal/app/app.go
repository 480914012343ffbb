package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/portfi/portfi-portal/internal/analysis"
	"github.com/portfi/portfi-portal/internal/assistant"
	"github.com/portfi/portfi-portal/internal/auth"
	"github.com/portfi/portfi-portal/internal/client"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
	"github.com/portfi/portfi-portal/internal/handlers"
	"github.com/portfi/portfi-portal/internal/identity/firebase"
	"github.com/portfi/portfi-portal/internal/interfaces"
	"github.com/portfi/portfi-portal/internal/market"
	"github.com/portfi/portfi-portal/internal/mcp"
	"github.com/portfi/portfi-portal/internal/pages"
	"github.com/portfi/portfi-portal/internal/seed"
	"github.com/portfi/portfi-portal/internal/storage"
	"github.com/portfi/portfi-portal/internal/theme"
)

// workspaceTTL is how long an idle browser workspace is kept.
const workspaceTTL = 2 * time.Hour

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Storage    interfaces.StorageManager
	Identity   interfaces.IdentityStore
	Session    *auth.Context
	Theme      *theme.Theme
	Client     *client.Client
	Assistant  assistant.Assistant
	Analyzer   analysis.Analyzer
	Provider   *market.Provider
	Catalog    *market.Catalog
	Workspaces *pages.Registry
	JWTSecret  []byte

	// HTTP handlers
	PageHandler         *handlers.PageHandler
	HealthHandler       *handlers.HealthHandler
	VersionHandler      *handlers.VersionHandler
	ServerHealthHandler *handlers.ServerHealthHandler
	AuthHandler         *handlers.AuthHandler
	HomeHandler         *handlers.HomeHandler
	DashboardHandler    *handlers.DashboardHandler
	PortfolioHandler    *handlers.PortfolioHandler
	ChatHandler         *handlers.ChatHandler
	MarketHandler       *handlers.MarketHandler
	FeedHandler         *handlers.FeedHandler
	ThemeHandler        *handlers.ThemeHandler
	ProfileHandler      *handlers.ProfileHandler
	MCPHandler          *mcp.Handler

	cancel context.CancelFunc
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Config: cfg,
		Logger: logger,
		cancel: cancel,
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE, dev accounts are seeded, do not use in production")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	if err := a.initSecret(); err != nil {
		cancel()
		return nil, err
	}

	if err := a.initStorage(); err != nil {
		cancel()
		return nil, err
	}

	a.Session = auth.NewContext(a.Identity, a.Identity, logger)
	a.Session.Start(ctx)
	a.Theme = theme.New(ctx, a.Storage.KeyValueStorage(), logger)

	if err := a.initServices(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.initHandlers()

	go a.sweepWorkspaces(ctx)

	if cfg.IsDevMode() {
		go seed.DevUsers(ctx, a.Identity, logger)
	}

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initSecret resolves the session signing secret. Dev mode generates a
// per-process secret when none is configured.
func (a *App) initSecret() error {
	if a.Config.Auth.JWTSecret != "" {
		a.JWTSecret = []byte(a.Config.Auth.JWTSecret)
		return nil
	}
	if !a.Config.IsDevMode() {
		return fmt.Errorf("auth.jwt_secret is required outside dev mode")
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("failed to generate session secret: %w", err)
	}
	a.JWTSecret = []byte(hex.EncodeToString(buf))
	a.Logger.Warn().Msg("no jwt_secret configured, sessions will not survive a restart")
	return nil
}

// initStorage opens badger and selects the identity backend.
func (a *App) initStorage() error {
	mgr, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	a.Storage = mgr

	switch a.Config.Identity.Provider {
	case "firebase":
		a.Identity = firebase.New(a.Config.Identity, a.Logger)
	default:
		a.Identity = mgr.IdentityStore()
	}
	a.Logger.Info().Str("provider", a.Config.Identity.Provider).Msg("identity backend selected")
	return nil
}

// initServices creates the backend client, FinBot, the analyzer and the
// sample market data.
func (a *App) initServices(ctx context.Context) error {
	a.Client = client.New(a.Config.Backend, a.Logger)

	asst, err := assistant.New(ctx, a.Config.Assistant, a.Client, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create assistant: %w", err)
	}
	a.Assistant = asst

	an, err := analysis.New(a.Config.Analysis, a.Client, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}
	a.Analyzer = an

	a.Provider = market.NewProvider()
	a.Catalog = market.NewCatalog()

	period := a.Config.Analysis.DefaultPeriod
	a.Workspaces = pages.NewRegistry(func() (*pages.ChatPage, *pages.PortfolioPage) {
		return pages.NewChatPage(a.Assistant, a.Logger), pages.NewPortfolioPage(a.Analyzer, period, a.Logger)
	}, workspaceTTL)
	return nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	cfg := a.Config
	sessionTTL := time.Duration(cfg.Auth.SessionTTLHours) * time.Hour
	rotate := time.Duration(cfg.Market.RotateIntervalSeconds) * time.Second

	a.PageHandler = handlers.NewPageHandler(a.Logger, cfg.IsDevMode(), a.Session, a.Theme, a.JWTSecret)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.ServerHealthHandler = handlers.NewServerHealthHandler(a.Logger, a.Assistant)
	a.AuthHandler = handlers.NewAuthHandler(a.Logger, a.PageHandler, a.Session, a.JWTSecret, sessionTTL)
	a.HomeHandler = handlers.NewHomeHandler(a.Logger, a.PageHandler, a.Provider, a.Catalog, cfg.Market.NewsLimit)
	a.DashboardHandler = handlers.NewDashboardHandler(a.Logger, a.PageHandler, a.Session, a.Provider)
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.Logger, a.PageHandler, a.Workspaces, a.Client)
	a.ChatHandler = handlers.NewChatHandler(a.Logger, a.PageHandler, a.Workspaces)
	a.MarketHandler = handlers.NewMarketHandler(a.Logger, a.Provider, a.Catalog, cfg.Market.NewsLimit)
	a.FeedHandler = handlers.NewFeedHandler(a.Logger, a.Catalog, rotate, cfg.Server.AllowedOrigins)
	a.ThemeHandler = handlers.NewThemeHandler(a.Logger, a.Theme)
	a.ProfileHandler = handlers.NewProfileHandler(a.Logger, a.Session)

	a.MCPHandler = mcp.NewHandler(mcp.Deps{
		Assistant: a.Assistant,
		Analyzer:  a.Analyzer,
		Provider:  a.Provider,
		Catalog:   a.Catalog,
	}, a.JWTSecret, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// sweepWorkspaces drops idle browser workspaces until ctx ends.
func (a *App) sweepWorkspaces(ctx context.Context) {
	ticker := time.NewTicker(workspaceTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := a.Workspaces.Len()
			a.Workspaces.Cleanup()
			if dropped := before - a.Workspaces.Len(); dropped > 0 {
				a.Logger.Debug().Int("dropped", dropped).Msg("idle workspaces removed")
			}
		}
	}
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.Session != nil {
		a.Session.Stop()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
