package account

import (
	"bytes"

	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/export"
	"github.com/amirasaad/atm/pkg/middleware"
	accountsvc "github.com/amirasaad/atm/pkg/service/account"
	authsvc "github.com/amirasaad/atm/pkg/service/auth"
	"github.com/amirasaad/atm/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// utf8BOM lets spreadsheet tools detect the encoding of exported files.
const utf8BOM = "\ufeff"

// Routes registers HTTP routes for account-related operations.
// Every route requires a bearer token for a live session.
func Routes(
	app *fiber.App,
	accountSvc *accountsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/account/balance", protected, GetBalance(accountSvc, authSvc))
	app.Get("/account/transactions", protected, GetTransactions(accountSvc, authSvc))
	app.Get("/account/transactions/csv", protected, ExportTransactions(accountSvc, authSvc))
	app.Post("/account/deposit", protected, Deposit(accountSvc, authSvc))
	app.Post("/account/withdraw", protected, Withdraw(accountSvc, authSvc))
	app.Post("/account/transfer", protected, Transfer(accountSvc, authSvc))
	app.Post("/account/pin", protected, ChangePIN(accountSvc, authSvc))
	app.Post("/account/password", protected, ChangePassword(accountSvc, authSvc))
	app.Post("/account/rating", protected, SubmitRating(accountSvc, authSvc))
}

// GetBalance returns the balance of the logged-in account holder.
func GetBalance(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := common.CurrentSession(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		username, ok := accountSvc.CurrentUser(sid)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", authsvc.ErrInvalidToken)
		}
		balance, err := accountSvc.Balance(c.Context(), sid, username)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", toBalanceDTO(balance))
	}
}

// GetTransactions returns the ledger of the logged-in account holder in stored order.
func GetTransactions(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := common.CurrentSession(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		username, ok := accountSvc.CurrentUser(sid)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", authsvc.ErrInvalidToken)
		}
		entries, err := accountSvc.Transactions(c.Context(), sid, username)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", toTransactionDTOs(entries))
	}
}

// ExportTransactions streams the ledger as a CSV attachment.
func ExportTransactions(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := common.CurrentSession(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		username, ok := accountSvc.CurrentUser(sid)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", authsvc.ErrInvalidToken)
		}
		entries, err := accountSvc.Transactions(c.Context(), sid, username)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to export transactions", err)
		}
		var buf bytes.Buffer
		buf.WriteString(utf8BOM)
		if err := export.WriteCSV(&buf, entries); err != nil {
			log.Errorf("CSV export for %s failed: %v", username, err)
			return common.ProblemDetailsJSON(c, "Failed to export transactions", err)
		}
		c.Attachment(export.APIFilename(username))
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Send(buf.Bytes())
	}
}

// Deposit credits the logged-in account holder.
func Deposit(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := common.CurrentSession(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err
		}
		res, err := accountSvc.Deposit(c.Context(), sid, input.Amount.String())
		if err != nil {
			log.Warnf("Deposit failed: %v", err)
			return common.ProblemDetailsJSON(c, "Deposit failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, res.Message, toBalanceDTO(res.Balance))
	}
}

// Withdraw debits the logged-in account holder after checking the PIN.
func Withdraw(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := common.CurrentSession(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[WithdrawRequest](c)
		if input == nil {
			return err
		}
		res, err := accountSvc.Withdraw(c.Context(), sid, input.Amount.String(), input.PIN.String())
		if err != nil {
			log.Warnf("Withdraw failed: %v", err)
			return common.ProblemDetailsJSON(c, "Withdraw failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, res.Message, toBalanceDTO(res.Balance))
	}
}

// Transfer moves funds to another account holder.
func Transfer(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := common.CurrentSession(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		res, err := accountSvc.Transfer(
			c.Context(), sid, input.ToUsername, input.Amount.String(), input.PIN.String(),
		)
		if err != nil {
			log.Warnf("Transfer failed: %v", err)
			return common.ProblemDetailsJSON(c, "Transfer failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, res.Message, toBalanceDTO(res.Balance))
	}
}

func ChangePIN(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := common.CurrentSession(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[ChangePINRequest](c)
		if input == nil {
			return err
		}
		msg, err := accountSvc.ChangePIN(c.Context(), sid, input.OldPIN.String(), input.NewPIN.String())
		if err != nil {
			return common.ProblemDetailsJSON(c, "PIN change failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, msg, nil)
	}
}

func ChangePassword(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := common.CurrentSession(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[ChangePasswordRequest](c)
		if input == nil {
			return err
		}
		msg, err := accountSvc.ChangePassword(c.Context(), sid, input.OldPassword, input.NewPassword)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Password change failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, msg, nil)
	}
}

// SubmitRating records a 1 to 5 rating of the service.
func SubmitRating(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := common.CurrentSession(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[RatingRequest](c)
		if input == nil {
			return err
		}
		msg, err := accountSvc.SubmitRating(c.Context(), sid, input.Rating.String())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Rating failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, msg, nil)
	}
}
