// Package handler is the serverless entry point: it serves the same HTTP
// API as cmd/server from a single http.HandlerFunc.
package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/amirasaad/atm/infra/initializer"
	"github.com/amirasaad/atm/pkg/app"
	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/webapi"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var (
	once    sync.Once
	served  http.Handler
	initErr error
)

// Handler is the main entry point of the application.
// Think of it like the main() method
func Handler(w http.ResponseWriter, r *http.Request) {
	// This is needed to set the proper request path in `*fiber.Ctx`
	r.RequestURI = r.URL.String()

	once.Do(func() {
		served, initErr = newHandler(context.Background())
	})
	if initErr != nil {
		http.Error(w, "service unavailable: "+initErr.Error(), http.StatusServiceUnavailable)
		return
	}
	served.ServeHTTP(w, r)
}

// newHandler builds the fiber application from the environment. Instances
// live as long as the process, so dependencies are never closed.
func newHandler(ctx context.Context) (http.Handler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.Jwt.Secret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is not set")
	}
	deps, err := initializer.InitializeDependencies(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, deps, cfg)
	if err != nil {
		_ = (&app.App{Deps: deps}).Close()
		return nil, err
	}
	return adaptor.FiberApp(webapi.SetupApp(a)), nil
}
