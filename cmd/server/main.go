package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirasaad/atm/infra/initializer"
	"github.com/amirasaad/atm/pkg/app"
	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/webapi"
	log "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

var errMissingJWTSecret = errors.New("AUTH_JWT_SECRET must be set to serve the API")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	a, fiberApp, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.Deps.Logger.Error("closing dependencies failed", "error", cerr)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.Deps.Logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
		"store", cfg.Store.Driver,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- fiberApp.Listen(addr) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.Deps.Logger.Info("Shutting down server")
		return fiberApp.Shutdown()
	}
}

// newServer wires the dependencies and the HTTP application. The caller
// owns the returned App and must Close it.
func newServer(ctx context.Context, cfg *config.App) (*app.App, *fiber.App, error) {
	if cfg.Auth == nil || cfg.Auth.Jwt == nil || cfg.Auth.Jwt.Secret == "" {
		return nil, nil, errMissingJWTSecret
	}

	// Initialize all dependencies
	deps, err := initializer.InitializeDependencies(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	a, err := app.New(ctx, deps, cfg)
	if err != nil {
		_ = (&app.App{Deps: deps}).Close()
		return nil, nil, fmt.Errorf("failed to start ledger: %w", err)
	}

	// Setup Fiber app with all routes and middleware
	return a, webapi.SetupApp(a), nil
}
