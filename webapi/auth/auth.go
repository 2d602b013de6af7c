package auth

import (
	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/middleware"
	authsvc "github.com/amirasaad/atm/pkg/service/auth"
	"github.com/amirasaad/atm/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(app *fiber.App, authSvc *authsvc.Service, cfg *config.App) {
	app.Post("/auth/login", Login(authSvc))
	app.Post("/auth/logout", middleware.JwtProtected(cfg.Auth.Jwt), Logout(authSvc))
}

// Login handles user authentication and returns a JWT token.
// Logging in ends every other session unless shared sessions are enabled.
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err // Error already written by BindAndValidate
		}
		res, err := authSvc.Login(c.Context(), input.Username, input.Password)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Login failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, res.Message, fiber.Map{
			"token":    res.Token,
			"username": res.Session.Username,
		})
	}
}

// Logout ends the session the token refers to. The token itself stays
// valid until it expires but no longer authorises anything.
func Logout(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := common.CurrentSession(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		msg, err := authSvc.Logout(c.Context(), sid)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Logout failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, msg, nil)
	}
}
