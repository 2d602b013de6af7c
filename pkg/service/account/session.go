package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/utils"
	"github.com/google/uuid"
)

// CreateAccount registers username with the given password and PIN. The
// username is trimmed; all three values must be non-blank.
func (s *Service) CreateAccount(ctx context.Context, username, password, pin string) (string, error) {
	username = strings.TrimSpace(username)
	log := s.logger.With("context", "CreateAccount", "username", username)
	log.Debug("CreateAccount started")

	if username == "" || strings.TrimSpace(password) == "" || strings.TrimSpace(pin) == "" {
		log.Warn("CreateAccount failed: missing field")
		return "", errFieldsRequired
	}

	var evts []events.Event
	defer func() { s.publish(ctx, evts...) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[username]; exists {
		log.Warn("CreateAccount failed: username taken")
		return "", errUsernameTaken
	}

	ws := s.begin()
	ws.insert(account.New(username, utils.HashSecret(password), utils.HashSecret(pin)))
	if err := s.commit(ctx, ws, log); err != nil {
		return "", err
	}

	log.Info("CreateAccount successful")
	evts = append(evts, events.AccountCreated{Meta: meta(username, s.now())})
	return fmt.Sprintf(msgAccountCreated, username), nil
}

// Login verifies the password and opens a session. With exclusive sessions
// every other session is revoked and every logged_in flag cleared in the
// same commit.
func (s *Service) Login(ctx context.Context, username, password string) (Session, string, error) {
	username = strings.TrimSpace(username)
	log := s.logger.With("context", "Login", "username", username)
	log.Debug("Login started")

	var evts []events.Event
	defer func() { s.publish(ctx, evts...) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[username]
	if !ok {
		log.Warn("Login failed: no such user")
		return Session{}, "", errNoSuchUser
	}
	if !utils.CheckSecretHash(password, a.PasswordHash) {
		log.Warn("Login failed: incorrect password")
		return Session{}, "", errIncorrectPassword
	}

	ws := s.begin()
	if s.opts.ExclusiveSessions {
		for name, other := range s.accounts {
			if other.LoggedIn && name != username {
				ws.edit(name).LoggedIn = false
			}
		}
	}
	if !a.LoggedIn {
		ws.edit(username).LoggedIn = true
	}
	if err := s.commit(ctx, ws, log); err != nil {
		return Session{}, "", err
	}

	var revoked []uuid.UUID
	if s.opts.ExclusiveSessions {
		for id := range s.sessions {
			revoked = append(revoked, id)
		}
		clear(s.sessions)
	}
	sess := Session{ID: uuid.New(), Username: username, StartedAt: s.now()}
	s.sessions[sess.ID] = sess

	log.Info("Login successful", "session", sess.ID, "revoked", len(revoked))
	evts = append(evts, events.SessionStarted{Meta: meta(username, sess.StartedAt), SessionID: sess.ID, Revoked: revoked})
	return sess, fmt.Sprintf(msgWelcome, username), nil
}

// Logout ends the session. Unknown or already-ended sessions are a no-op.
// The account's logged_in flag is cleared unless it still has another live
// session.
func (s *Service) Logout(ctx context.Context, sid uuid.UUID) (string, error) {
	log := s.logger.With("context", "Logout", "session", sid)
	log.Debug("Logout started")

	var evts []events.Event
	defer func() { s.publish(ctx, evts...) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sid]
	if !ok {
		log.Debug("Logout: no such session")
		return msgLoggedOut, nil
	}

	stillActive := false
	for id, other := range s.sessions {
		if id != sid && other.Username == sess.Username {
			stillActive = true
			break
		}
	}
	if a, ok := s.accounts[sess.Username]; ok && a.LoggedIn && !stillActive {
		ws := s.begin()
		ws.edit(sess.Username).LoggedIn = false
		if err := s.commit(ctx, ws, log); err != nil {
			return "", err
		}
	}
	delete(s.sessions, sid)

	log.Info("Logout successful", "username", sess.Username)
	evts = append(evts, events.SessionEnded{Meta: meta(sess.Username, s.now()), SessionID: sid})
	return msgLoggedOut, nil
}

// CurrentUser returns the username bound to sid.
func (s *Service) CurrentUser(sid uuid.UUID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, err := s.session(sid)
	return username, err == nil
}

// ActiveSessions reports how many sessions are live.
func (s *Service) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
