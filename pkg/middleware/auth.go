package middleware

import (
	"errors"
	"strings"

	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JwtProtected verifies the bearer token and stores it in c.Locals("user").
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	secret := ""
	if cfg != nil {
		secret = cfg.Secret
	}
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) ||
		strings.EqualFold(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error()) {
		return common.ProblemDetailsJSON(c, "Bad Request", err, "Missing or malformed JWT", fiber.StatusBadRequest)
	}
	return common.ProblemDetailsJSON(c, "Unauthorized", err, "Invalid or expired JWT", fiber.StatusUnauthorized)
}
