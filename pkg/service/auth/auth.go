package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/service/account"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const tokenContextKey contextKey = "token"

// ErrInvalidToken is returned when a bearer token carries no usable session.
var ErrInvalidToken = domain.NewError(domain.ErrUnauthorized, "Invalid or expired token.")

// ErrMissingSecret is returned when tokens are requested without a signing key.
var ErrMissingSecret = errors.New("auth: jwt secret is not configured")

// Sessions is the part of the ledger engine auth depends on.
type Sessions interface {
	Login(ctx context.Context, username, password string) (account.Session, string, error)
	Logout(ctx context.Context, sid uuid.UUID) (string, error)
}

type Strategy interface {
	GenerateToken(ctx context.Context, sess account.Session) (string, error)
	SessionID(ctx context.Context) (uuid.UUID, error)
}

// LoginResult is a successful login: the engine session, its welcome
// message and, for token strategies, the signed token.
type LoginResult struct {
	Session account.Session
	Message string
	Token   string
}

type Service struct {
	sessions Sessions
	strategy Strategy
	logger   *slog.Logger
}

func New(
	sessions Sessions,
	strategy Strategy,
	logger *slog.Logger,
) *Service {
	return &Service{sessions: sessions, strategy: strategy, logger: logger}
}

// NewWithBasic builds a Service that issues no tokens. The CLI uses it.
func NewWithBasic(
	sessions Sessions,
	logger *slog.Logger,
) *Service {
	return New(sessions, &BasicStrategy{logger: logger}, logger)
}

func NewWithJWT(
	sessions Sessions,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return New(sessions, NewJWTStrategy(cfg, logger), logger)
}

// Login opens an engine session and issues a token for it. If the token
// cannot be issued the session is ended again.
func (s *Service) Login(
	ctx context.Context,
	username, password string,
) (LoginResult, error) {
	log := s.logger.With("context", "Login", "username", username)
	log.Debug("Login called")
	sess, msg, err := s.sessions.Login(ctx, username, password)
	if err != nil {
		log.Warn("Login failed", "error", err)
		return LoginResult{}, err
	}
	token, err := s.strategy.GenerateToken(ctx, sess)
	if err != nil {
		log.Error("GenerateToken failed", "error", err)
		if _, lerr := s.sessions.Logout(ctx, sess.ID); lerr != nil {
			log.Error("Ending orphaned session failed", "session", sess.ID, "error", lerr)
		}
		return LoginResult{}, err
	}
	log.Info("Login successful", "session", sess.ID)
	return LoginResult{Session: sess, Message: msg, Token: token}, nil
}

func (s *Service) Logout(ctx context.Context, sid uuid.UUID) (string, error) {
	log := s.logger.With("context", "Logout", "session", sid)
	log.Debug("Logout called")
	msg, err := s.sessions.Logout(ctx, sid)
	if err != nil {
		log.Error("Logout failed", "error", err)
		return "", err
	}
	return msg, nil
}

// SessionID extracts the engine session a verified token refers to.
func (s *Service) SessionID(token *jwt.Token) (uuid.UUID, error) {
	log := s.logger.With("context", "SessionID")
	sid, err := s.strategy.SessionID(context.WithValue(context.Background(), tokenContextKey, token))
	if err != nil {
		log.Warn("SessionID failed", "error", err)
		return uuid.Nil, err
	}
	return sid, nil
}

// JWTStrategy signs HS256 tokens carrying the session id and username.
type JWTStrategy struct {
	cfg    *config.Jwt
	logger *slog.Logger
	now    func() time.Time
}

func NewJWTStrategy(cfg *config.Jwt, logger *slog.Logger) *JWTStrategy {
	if cfg == nil {
		cfg = &config.Jwt{}
	}
	return &JWTStrategy{cfg: cfg, logger: logger, now: time.Now}
}

func (s *JWTStrategy) GenerateToken(
	ctx context.Context,
	sess account.Session,
) (string, error) {
	log := s.logger.With("session", sess.ID)
	log.Debug("GenerateToken called")
	if s.cfg.Secret == "" {
		return "", ErrMissingSecret
	}
	now := s.now()
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["sid"] = sess.ID.String()
	claims["username"] = sess.Username
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.cfg.Expiry).Unix()
	tokenString, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	log.Debug("GenerateToken successful")
	return tokenString, nil
}

func (s *JWTStrategy) SessionID(ctx context.Context) (uuid.UUID, error) {
	token, ok := ctx.Value(tokenContextKey).(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	raw, ok := claims["sid"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	sid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return sid, nil
}

// BasicStrategy issues no tokens; callers keep the session id themselves.
type BasicStrategy struct {
	logger *slog.Logger
}

func (s *BasicStrategy) GenerateToken(ctx context.Context, sess account.Session) (string, error) {
	s.logger.Debug("GenerateToken called", "session", sess.ID)
	return "", nil // No token for basic auth
}

func (s *BasicStrategy) SessionID(ctx context.Context) (uuid.UUID, error) {
	return uuid.Nil, ErrInvalidToken
}
