package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/atm/infra/repository/memory"
	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/service/account"
	authsvc "github.com/amirasaad/atm/pkg/service/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockSessions struct{ mock.Mock }

func (m *mockSessions) Login(ctx context.Context, username, password string) (account.Session, string, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(account.Session), args.String(1), args.Error(2)
}

func (m *mockSessions) Logout(ctx context.Context, sid uuid.UUID) (string, error) {
	args := m.Called(ctx, sid)
	return args.String(0), args.Error(1)
}

func jwtConfig() *config.Jwt {
	return &config.Jwt{Secret: "test-secret", Expiry: time.Hour}
}

func parse(t *testing.T, token, secret string) *jwt.Token {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	return parsed
}

func TestLogin_IssuesTokenForEngineSession(t *testing.T) {
	engine := account.New(memory.New(nil), account.DefaultOptions(), logger, nil)
	require.NoError(t, engine.Open(context.Background()))
	_, err := engine.CreateAccount(context.Background(), "alice", "pw1", "1111")
	require.NoError(t, err)

	s := authsvc.NewWithJWT(engine, jwtConfig(), logger)
	res, err := s.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome back, alice!", res.Message)
	require.NotEmpty(t, res.Token)

	token := parse(t, res.Token, "test-secret")
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", claims["username"])
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)

	sid, err := s.SessionID(token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, sid)
	user, ok := engine.CurrentUser(sid)
	assert.True(t, ok)
	assert.Equal(t, "alice", user)

	msg, err := s.Logout(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, "Logged out.", msg)
	_, ok = engine.CurrentUser(sid)
	assert.False(t, ok)
}

func TestLogin_EngineFailure(t *testing.T) {
	t.Parallel()
	sessions := &mockSessions{}
	engineErr := domain.NewError(domain.ErrUnauthorized, "Incorrect password.")
	sessions.On("Login", mock.Anything, "alice", "wrong").Return(account.Session{}, "", engineErr).Once()

	s := authsvc.NewWithJWT(sessions, jwtConfig(), logger)
	res, err := s.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, res.Token)
	sessions.AssertExpectations(t)
}

func TestLogin_TokenFailureEndsSession(t *testing.T) {
	t.Parallel()
	sessions := &mockSessions{}
	sess := account.Session{ID: uuid.New(), Username: "alice"}
	sessions.On("Login", mock.Anything, "alice", "pw1").Return(sess, "Welcome back, alice!", nil).Once()
	sessions.On("Logout", mock.Anything, sess.ID).Return("Logged out.", nil).Once()

	s := authsvc.NewWithJWT(sessions, &config.Jwt{Expiry: time.Hour}, logger)
	_, err := s.Login(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, authsvc.ErrMissingSecret)
	sessions.AssertExpectations(t)
}

func TestLogout_PropagatesEngineError(t *testing.T) {
	t.Parallel()
	sessions := &mockSessions{}
	sid := uuid.New()
	sessions.On("Logout", mock.Anything, sid).Return("", errors.New("disk full")).Once()

	s := authsvc.NewWithBasic(sessions, logger)
	_, err := s.Logout(context.Background(), sid)
	assert.Error(t, err)
	sessions.AssertExpectations(t)
}

func TestBasicStrategy(t *testing.T) {
	t.Parallel()
	sessions := &mockSessions{}
	sess := account.Session{ID: uuid.New(), Username: "bob"}
	sessions.On("Login", mock.Anything, "bob", "pw2").Return(sess, "Welcome back, bob!", nil).Once()

	s := authsvc.NewWithBasic(sessions, logger)
	res, err := s.Login(context.Background(), "bob", "pw2")
	require.NoError(t, err)
	assert.Empty(t, res.Token)
	assert.Equal(t, sess.ID, res.Session.ID)

	_, err = s.SessionID(jwt.New(jwt.SigningMethodHS256))
	assert.ErrorIs(t, err, authsvc.ErrInvalidToken)
}

func TestSessionID_InvalidTokens(t *testing.T) {
	t.Parallel()
	s := authsvc.NewWithJWT(&mockSessions{}, jwtConfig(), logger)

	tests := []struct {
		name  string
		token *jwt.Token
	}{
		{"nil token", nil},
		{"empty token", &jwt.Token{}},
		{"missing claim", jwt.New(jwt.SigningMethodHS256)},
		{"wrong claim type", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": 42})},
		{"malformed sid", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": "not-a-uuid"})},
		{"registered claims", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SessionID(tt.token)
			assert.ErrorIs(t, err, authsvc.ErrInvalidToken)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
