package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// secret describes one of the two credentials a user can change.
type secret struct {
	op         string
	credential events.Credential
	digest     func(a *account.Account) *string
	errOld     error
	errNew     error
	success    string
}

var (
	pinSecret = secret{
		op:         "ChangePIN",
		credential: events.CredentialPIN,
		digest:     func(a *account.Account) *string { return &a.PinHash },
		errOld:     errIncorrectOldPIN,
		errNew:     errNewPINRequired,
		success:    msgPINChanged,
	}
	passwordSecret = secret{
		op:         "ChangePassword",
		credential: events.CredentialPassword,
		digest:     func(a *account.Account) *string { return &a.PasswordHash },
		errOld:     errIncorrectCurrentPwd,
		errNew:     errNewPasswordRequired,
		success:    msgPasswordChanged,
	}
)

// ChangePIN replaces the PIN after verifying the old one.
func (s *Service) ChangePIN(ctx context.Context, sid uuid.UUID, oldPIN, newPIN string) (string, error) {
	return s.changeSecret(ctx, sid, pinSecret, oldPIN, newPIN)
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, sid uuid.UUID, oldPassword, newPassword string) (string, error) {
	return s.changeSecret(ctx, sid, passwordSecret, oldPassword, newPassword)
}

func (s *Service) changeSecret(ctx context.Context, sid uuid.UUID, sec secret, oldValue, newValue string) (string, error) {
	op := sec.op
	log := s.logger.With("context", op, "session", sid)
	log.Debug(op + " started")

	var evts []events.Event
	defer func() { s.publish(ctx, evts...) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	username, err := s.session(sid)
	if err != nil {
		log.Warn(op + " failed: no session")
		return "", err
	}
	log = log.With("username", username)

	if !utils.CheckSecretHash(oldValue, *sec.digest(s.accounts[username])) {
		log.Warn(op + " failed: old secret mismatch")
		return "", sec.errOld
	}
	if strings.TrimSpace(newValue) == "" {
		log.Warn(op + " failed: new secret empty")
		return "", sec.errNew
	}

	ws := s.begin()
	*sec.digest(ws.edit(username)) = utils.HashSecret(newValue)
	if err := s.commit(ctx, ws, log); err != nil {
		return "", err
	}

	log.Info(op + " successful")
	evts = append(evts, events.CredentialChanged{Meta: meta(username, s.now()), Credential: sec.credential})
	return sec.success, nil
}

// SubmitRating stores an integer rating in [1, 5], replacing any earlier one.
func (s *Service) SubmitRating(ctx context.Context, sid uuid.UUID, rating string) (string, error) {
	log := s.logger.With("context", "SubmitRating", "session", sid)
	log.Debug("SubmitRating started", "rating", rating)

	var evts []events.Event
	defer func() { s.publish(ctx, evts...) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	username, err := s.session(sid)
	if err != nil {
		log.Warn("SubmitRating failed: no session")
		return "", err
	}
	log = log.With("username", username)

	value, err := parseRating(rating, log)
	if err != nil {
		return "", err
	}

	ws := s.begin()
	ws.edit(username).Rating = &value
	if err := s.commit(ctx, ws, log); err != nil {
		return "", err
	}

	log.Info("SubmitRating successful", "rating", value)
	evts = append(evts, events.RatingSubmitted{Meta: meta(username, s.now()), Rating: value})
	return fmt.Sprintf(msgRated, value), nil
}

func parseRating(raw string, log *slog.Logger) (int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !account.ExponentInRange(d) || !d.IsInteger() {
		log.Warn("SubmitRating failed: not an integer")
		return 0, errInvalidRating
	}
	if d.LessThan(decimal.NewFromInt(1)) || d.GreaterThan(decimal.NewFromInt(5)) {
		log.Warn("SubmitRating failed: out of range")
		return 0, errRatingOutOfRange
	}
	return int(d.IntPart()), nil
}
