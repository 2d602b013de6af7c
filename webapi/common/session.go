package common

import (
	"encoding/json"
	"strings"

	"github.com/amirasaad/atm/pkg/domain"
	authsvc "github.com/amirasaad/atm/pkg/service/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errMissingUserContext = domain.NewError(domain.ErrUnauthorized, "Login required.")

// CurrentSession returns the engine session named by the verified token
// that middleware.JwtProtected stored in c.Locals("user").
func CurrentSession(c *fiber.Ctx, authSvc *authsvc.Service) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errMissingUserContext
	}
	return authSvc.SessionID(token)
}

// Text accepts a JSON string or number and keeps its literal text, so
// amounts and PINs reach the ledger exactly as the client sent them.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*t = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*t = Text(n)
	}
	return nil
}

func (t Text) String() string { return string(t) }
