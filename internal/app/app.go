package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mcpgate/internal/config"
	"mcpgate/internal/identity"
	"mcpgate/internal/oauth"
	"mcpgate/internal/proxy"
	"mcpgate/internal/server"
	"mcpgate/internal/store"
	"mcpgate/pkg/logging"
)

const shutdownTimeout = 15 * time.Second

// Application holds the wired gateway components.
type Application struct {
	cfg    config.Config
	store  *store.MemoryStore
	server *server.Server
}

// NewApplication performs the bootstrap sequence: logging first, then
// configuration, then the component graph.
func NewApplication(configFile string, debug bool) (*Application, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	level := parseLogLevel(cfg.Server.LogLevel)
	if debug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	ms := store.NewMemoryStore()

	verifier := identity.NewVerifier(identity.Config{
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
		RedirectURL:  cfg.Server.BaseURL + "/callback",
		AllowedUsers: cfg.GitHub.AllowedUsers,
	})

	flows := oauth.NewFlows(ms, verifier, oauth.Config{
		AccessTTL:  cfg.Tokens.AccessTTL.Std(),
		RefreshTTL: cfg.Tokens.RefreshTTL.Std(),
		CodeTTL:    cfg.Tokens.CodeTTL.Std(),
		SessionTTL: cfg.Tokens.SessionTTL.Std(),
	})

	gateway, err := proxy.NewGateway(proxy.Config{
		BackendAddress:      cfg.Backend.Address,
		SharedSecret:        cfg.Backend.SharedSecret,
		Realm:               cfg.Server.BaseURL,
		ResourceMetadataURL: cfg.Server.BaseURL + "/.well-known/oauth-protected-resource",
	}, flows)
	if err != nil {
		return nil, fmt.Errorf("building proxy gateway: %w", err)
	}

	logging.Info("Bootstrap", "Gateway configured: %d allowed users, backend %s",
		len(cfg.GitHub.AllowedUsers), cfg.Backend.Address)

	return &Application{
		cfg:    cfg,
		store:  ms,
		server: server.New(cfg.Server.Listen, oauth.NewHandler(flows), gateway),
	}, nil
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer a.store.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func parseLogLevel(level string) logging.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
