package account

import (
	"context"
	"slices"
	"strings"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// resolve picks the account a read refers to: the explicit username if
// given, otherwise the session's user. ok is false when neither applies.
// Callers hold s.mu.
func (s *Service) resolve(sid uuid.UUID, username string) (a *account.Account, ok bool, err error) {
	username = strings.TrimSpace(username)
	if username == "" {
		current, err := s.session(sid)
		if err != nil {
			return nil, false, nil
		}
		username = current
	}
	a, exists := s.accounts[username]
	if !exists {
		return nil, false, errNoSuchUser
	}
	return a, true, nil
}

// Balance returns the balance of username, or of the session's user when
// username is empty. With neither it returns zero.
func (s *Service) Balance(_ context.Context, sid uuid.UUID, username string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok, err := s.resolve(sid, username)
	if err != nil || !ok {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

// Transactions returns a copy of the ledger of username, or of the
// session's user when username is empty, in stored order. With neither it
// returns an empty slice.
func (s *Service) Transactions(_ context.Context, sid uuid.UUID, username string) ([]account.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok, err := s.resolve(sid, username)
	if err != nil || !ok {
		return []account.Entry{}, err
	}
	entries := slices.Clone(a.Transactions)
	if entries == nil {
		entries = []account.Entry{}
	}
	return entries, nil
}

// Snapshot returns a deep copy of every account.
func (s *Service) Snapshot() account.Mapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts.Clone()
}
