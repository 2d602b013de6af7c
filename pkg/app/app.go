package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/amirasaad/atm/pkg/repository"
	"github.com/amirasaad/atm/pkg/service/account"
	"github.com/amirasaad/atm/pkg/service/auth"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Store    repository.Store
	EventBus eventbus.Bus
	Logger   *slog.Logger
	// Closers are released by App.Close in reverse order.
	Closers []io.Closer
}

type App struct {
	Deps           *Deps
	Config         *config.App
	AccountService *account.Service
	AuthService    *auth.Service
}

// LedgerOptions maps the ledger configuration onto engine options.
func LedgerOptions(cfg *config.App) account.Options {
	opts := account.DefaultOptions()
	if cfg.Ledger != nil {
		opts.MaxDeposit = cfg.Ledger.MaxDeposit
		opts.ExclusiveSessions = cfg.Ledger.ExclusiveSessions
		opts.CurrencySymbol = cfg.Ledger.CurrencySymbol
	}
	if cfg.Store != nil && cfg.Store.Timeout > 0 {
		opts.StoreTimeout = cfg.Store.Timeout
	}
	return opts
}

// New builds the services and loads the persisted accounts. Tokens are
// issued only when a JWT secret is configured.
func New(ctx context.Context, deps *Deps, cfg *config.App) (*App, error) {
	a := &App{
		Deps:   deps,
		Config: cfg,
	}
	if deps.EventBus != nil {
		a.setupEventBus()
	}

	a.AccountService = account.New(deps.Store, LedgerOptions(cfg), deps.Logger, deps.EventBus)
	if err := a.AccountService.Open(ctx); err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	if cfg.Auth != nil && cfg.Auth.Jwt != nil && cfg.Auth.Jwt.Secret != "" {
		a.AuthService = auth.NewWithJWT(a.AccountService, cfg.Auth.Jwt, deps.Logger)
	} else {
		a.AuthService = auth.NewWithBasic(a.AccountService, deps.Logger)
	}
	return a, nil
}

// Close releases the store and event bus connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.Deps.Closers) - 1; i >= 0; i-- {
		if err := a.Deps.Closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
