// Package gormstore persists the account mapping in two SQL tables through
// gorm: ledger_accounts and ledger_entries. It works with the sqlite and
// postgres drivers.
package gormstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	infrarepo "github.com/amirasaad/atm/infra/repository"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/repository"
	"gorm.io/gorm"
)

const batchSize = 500

// Store is a repository.Store over a gorm connection.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New wraps db. Call Migrate before first use on a fresh database.
func New(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger.With("store", "gorm", "dialect", db.Dialector.Name())}
}

// Migrate creates or updates the ledger tables.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Account{}, &Entry{})
}

// Load implements repository.Store. Query failures are returned: an
// unreachable database is not the same as an empty one.
func (s *Store) Load(ctx context.Context) (account.Mapping, error) {
	var rows []Account
	if err := s.db.WithContext(ctx).Order("username").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	var entries []Entry
	if err := s.db.WithContext(ctx).Order("username, seq").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	m := make(account.Mapping, len(rows))
	for _, row := range rows {
		m[row.Username] = s.toDomain(row)
	}
	for _, row := range entries {
		a, ok := m[row.Username]
		if !ok {
			s.logger.Warn("skipping ledger entry for unknown account", "username", row.Username, "seq", row.Seq)
			continue
		}
		a.Transactions = append(a.Transactions, s.entryToDomain(row))
	}
	s.logger.Debug("accounts loaded", "accounts", len(m), "entries", len(entries))
	return m, nil
}

// Save implements repository.Store. Both tables are replaced inside one
// database transaction, so a failed save leaves the previous rows in place.
func (s *Store) Save(ctx context.Context, m account.Mapping) error {
	rows := make([]Account, 0, len(m))
	var entries []Entry
	for _, username := range m.Usernames() {
		a := m[username]
		row, err := fromDomain(a)
		if err != nil {
			return infrarepo.MapSaveError(err)
		}
		rows = append(rows, row)
		for i, e := range a.Transactions {
			er, err := entryFromDomain(username, i, e)
			if err != nil {
				return infrarepo.MapSaveError(err)
			}
			entries = append(entries, er)
		}
	}

	return infrarepo.WrapSave(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
			if err := all.Delete(&Entry{}).Error; err != nil {
				return fmt.Errorf("clear entries: %w", err)
			}
			if err := all.Delete(&Account{}).Error; err != nil {
				return fmt.Errorf("clear accounts: %w", err)
			}
			if len(rows) > 0 {
				if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
					return fmt.Errorf("insert accounts: %w", err)
				}
			}
			if len(entries) > 0 {
				if err := tx.CreateInBatches(entries, batchSize).Error; err != nil {
					return fmt.Errorf("insert entries: %w", err)
				}
			}
			return nil
		})
	})
}

func fromDomain(a *account.Account) (Account, error) {
	extra, err := encodeExtra(a.Extra)
	if err != nil {
		return Account{}, err
	}
	return Account{
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		PinHash:      a.PinHash,
		Balance:      a.Balance,
		Rating:       a.Rating,
		LoggedIn:     a.LoggedIn,
		Extra:        extra,
	}, nil
}

func entryFromDomain(username string, seq int, e account.Entry) (Entry, error) {
	extra, err := encodeExtra(e.Extra)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Username:  username,
		Seq:       seq,
		Type:      e.Type(),
		Amount:    e.Amount,
		Timestamp: e.FormattedTimestamp(),
		Extra:     extra,
	}, nil
}

func (s *Store) toDomain(row Account) *account.Account {
	a := account.New(row.Username, row.PasswordHash, row.PinHash)
	a.Balance = row.Balance
	a.LoggedIn = row.LoggedIn
	if row.Rating != nil && *row.Rating >= 1 && *row.Rating <= 5 {
		r := *row.Rating
		a.Rating = &r
	} else if row.Rating != nil {
		s.logger.Warn("invalid rating, leaving it unset", "username", row.Username, "rating", *row.Rating)
	}
	a.Extra = s.decodeExtra(row.Extra, "username", row.Username)
	return a
}

func (s *Store) entryToDomain(row Entry) account.Entry {
	e := account.Entry{Amount: row.Amount}
	e.Kind, e.Counterparty = account.ParseEntryType(row.Type)
	if e.Kind == account.KindOther {
		e.Label = row.Type
	}
	if row.Timestamp != "" {
		if ts, ok := account.ParseTimestamp(row.Timestamp); ok {
			e.Timestamp = ts
		} else {
			s.logger.Warn("invalid entry timestamp, leaving it empty", "username", row.Username, "seq", row.Seq)
		}
	}
	e.Extra = s.decodeExtra(row.Extra, "username", row.Username, "seq", row.Seq)
	return e
}

func encodeExtra(extra map[string]json.RawMessage) (string, error) {
	if len(extra) == 0 {
		return "", nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("encode extra fields: %w", err)
	}
	return string(data), nil
}

func (s *Store) decodeExtra(text string, attrs ...any) map[string]json.RawMessage {
	if text == "" {
		return nil
	}
	var extra map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &extra); err != nil {
		s.logger.Warn("dropping unreadable extra fields", append(attrs, "error", err)...)
		return nil
	}
	return extra
}

var _ repository.Store = (*Store)(nil)
