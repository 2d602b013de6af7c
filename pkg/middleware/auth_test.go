package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/atm/pkg/config"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":      "5f0c3f2e-8d8c-4d5c-9e1a-0a9c2b7f4e11",
		"username": "alice",
		"exp":      exp.Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protectedApp(cfg *config.Jwt) *fiber.App {
	app := fiber.New()
	app.Use(JwtProtected(cfg))
	app.Get("/", func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(token.Claims.(jwt.MapClaims)["username"].(string))
	})
	return app
}

func do(t *testing.T, app *fiber.App, bearer string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck
	return resp.StatusCode
}

func TestJwtProtected(t *testing.T) {
	cfg := &config.Jwt{Secret: "secret", Expiry: time.Hour}
	app := protectedApp(cfg)

	assert.Equal(t, fiber.StatusOK, do(t, app, sign(t, "secret", time.Now().Add(time.Hour))))
	assert.Equal(t, fiber.StatusBadRequest, do(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, sign(t, "other", time.Now().Add(time.Hour))))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, sign(t, "secret", time.Now().Add(-time.Minute))))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "not.a.jwt"))
}

func TestJwtError_Malformed(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, jwtware.ErrJWTMissingOrMalformed)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected %d, got %d", fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestJwtError_Invalid(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("any other error"))
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected %d, got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}
