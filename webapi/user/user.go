package user

import (
	accountsvc "github.com/amirasaad/atm/pkg/service/account"
	"github.com/amirasaad/atm/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

func Routes(app *fiber.App, accountSvc *accountsvc.Service) {
	app.Post("/user", CreateUser(accountSvc))
}

// CreateUser registers a new account holder with a password and PIN.
func CreateUser(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[NewUser](c)
		if input == nil {
			return err // error response already written
		}
		msg, err := accountSvc.CreateAccount(c.Context(), input.Username, input.Password, input.PIN.String())
		if err != nil {
			log.Warnf("Create user failed: %v", err)
			return common.ProblemDetailsJSON(c, "Couldn't create user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, msg, nil)
	}
}
