// Package webapi exposes the ledger over HTTP.
// It is organized into sub-packages per resource:
// - account: balance, history, money movement and credential endpoints
// - auth: login and logout
// - user: account holder registration
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/atm/pkg/app"
	accountweb "github.com/amirasaad/atm/webapi/account"
	authweb "github.com/amirasaad/atm/webapi/auth"
	"github.com/amirasaad/atm/webapi/common"
	userweb "github.com/amirasaad/atm/webapi/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	accountSvc := a.AccountService
	authSvc := a.AuthService

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	if rl := a.Config.RateLimit; rl != nil {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:        rl.MaxRequests,
			Expiration: rl.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				// First hop of X-Forwarded-For, then X-Real-IP, then the peer.
				if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
					first, _, _ := strings.Cut(forwardedFor, ",")
					return strings.TrimSpace(first)
				}
				if realIP := c.Get("X-Real-IP"); realIP != "" {
					return realIP
				}
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ATM API is running!")
	})

	accountweb.Routes(fiberApp, accountSvc, authSvc, a.Config)
	userweb.Routes(fiberApp, accountSvc)
	authweb.Routes(fiberApp, authSvc, a.Config)
	return fiberApp
}
