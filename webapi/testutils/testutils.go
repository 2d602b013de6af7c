// Package testutils provides an HTTP test suite over a fully wired ledger
// backed by the in-memory store.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	infraeventbus "github.com/amirasaad/atm/infra/eventbus"
	"github.com/amirasaad/atm/infra/repository/memory"
	"github.com/amirasaad/atm/pkg/app"
	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/webapi"
	"github.com/amirasaad/atm/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// TestSecret signs the tokens issued during tests.
const TestSecret = "test-secret-for-handlers"

// E2ETestSuite wires a fresh application for every test.
type E2ETestSuite struct {
	suite.Suite
	App   *app.App
	Store *memory.Store
	Bus   *infraeventbus.MemoryEventBus
	Cfg   *config.App
	app   *fiber.App
}

// TestConfig returns a configuration equivalent to the defaults with a JWT
// secret set.
func TestConfig() *config.App {
	return &config.App{
		Env:    "test",
		Server: &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Log:    &config.Log{Format: "text"},
		Store:  &config.Store{Driver: config.StoreMemory, Timeout: 5 * time.Second},
		EventBus: &config.EventBus{
			Driver: config.EventBusMemory,
		},
		Auth: &config.Auth{Jwt: &config.Jwt{Secret: TestSecret, Expiry: time.Hour}},
		Ledger: &config.Ledger{
			MaxDeposit:        decimal.NewFromInt(50000),
			ExclusiveSessions: true,
			CurrencySymbol:    "₹",
		},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
	}
}

// SetupTest builds a new application so tests never share accounts or sessions.
func (s *E2ETestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if s.Cfg == nil {
		s.Cfg = TestConfig()
	}
	s.Store = memory.New(nil)
	s.Bus = infraeventbus.NewWithMemory(logger)
	a, err := app.New(context.Background(), &app.Deps{
		Store:    s.Store,
		EventBus: s.Bus,
		Logger:   logger,
	}, s.Cfg)
	s.Require().NoError(err)
	s.App = a
	s.app = webapi.SetupApp(a)
	log.SetOutput(io.Discard)
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.Do(req)
}

// Do sends a prepared request through the application.
func (s *E2ETestSuite) Do(req *http.Request) *http.Response {
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// DecodeResponse reads a success envelope and closes the body.
func (s *E2ETestSuite) DecodeResponse(resp *http.Response) common.Response {
	defer resp.Body.Close() //nolint: errcheck
	var out common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// DecodeProblem reads a problem details body and closes it.
func (s *E2ETestSuite) DecodeProblem(resp *http.Response) common.ProblemDetails {
	defer resp.Body.Close() //nolint: errcheck
	var out common.ProblemDetails
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// CreateTestUser registers a unique account holder via POST /user and
// returns its username. Every test user has password "password123" and
// PIN "1234".
func (s *E2ETestSuite) CreateTestUser() string {
	username := fmt.Sprintf("testuser_%s", uuid.New().String()[:8])
	body := fmt.Sprintf(`{"username":%q,"password":"password123","pin":"1234"}`, username)
	resp := s.MakeRequest(http.MethodPost, "/user", body, "")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()
	return username
}

// LoginUser logs username in over HTTP and returns the bearer token.
func (s *E2ETestSuite) LoginUser(username string) string {
	body := fmt.Sprintf(`{"username":%q,"password":"password123"}`, username)
	resp := s.MakeRequest(http.MethodPost, "/auth/login", body, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	out := s.DecodeResponse(resp)
	data, ok := out.Data.(map[string]any)
	s.Require().True(ok, "login response carries no data")
	token, _ := data["token"].(string)
	s.Require().NotEmpty(token, "no token found in response")
	return token
}
