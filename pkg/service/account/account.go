// Package account is the ledger engine. It owns the account mapping and the
// live sessions, and runs every operation against them.
//
// Each mutation validates its input, applies the change to a copy-on-write
// working set, hands that working set to the store and only then swaps it
// in. A failed save therefore leaves memory equal to what was last
// persisted. All mutations are serialised by one mutex that is held across
// validation, mutation and persistence; reads take the read lock and
// return copies.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/amirasaad/atm/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is the ledger engine.
type Service struct {
	store  repository.Store
	opts   Options
	logger *slog.Logger
	bus    eventbus.Bus

	mu       sync.RWMutex
	accounts account.Mapping
	sessions map[uuid.UUID]Session
}

// New creates an engine over store. bus may be nil. Call Open before use.
func New(store repository.Store, opts Options, logger *slog.Logger, bus eventbus.Bus) *Service {
	defaults := DefaultOptions()
	if opts.MaxDeposit.IsZero() {
		opts.MaxDeposit = defaults.MaxDeposit
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = defaults.CurrencySymbol
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		opts:     opts,
		logger:   logger.With("service", "ledger"),
		bus:      bus,
		accounts: account.Mapping{},
		sessions: make(map[uuid.UUID]Session),
	}
}

// Open loads the persisted mapping, replacing whatever the engine holds.
// Live sessions are dropped; logged_in flags on disk are kept as they are.
func (s *Service) Open(ctx context.Context) error {
	log := s.logger.With("context", "Open")
	m, err := s.store.Load(ctx)
	if err != nil {
		log.Error("loading accounts failed", "error", err)
		return fmt.Errorf("load accounts: %w", err)
	}
	if m == nil {
		m = account.Mapping{}
	}
	s.mu.Lock()
	s.accounts = m
	s.sessions = make(map[uuid.UUID]Session)
	s.mu.Unlock()
	log.Info("accounts loaded", "accounts", len(m))
	return nil
}

// workingSet is a copy-on-write view of the mapping. Accounts are cloned
// the first time they are edited; untouched accounts are shared with the
// committed mapping and must not be modified.
type workingSet struct {
	next   account.Mapping
	cloned map[string]bool
}

func (s *Service) begin() *workingSet {
	return &workingSet{next: maps.Clone(s.accounts), cloned: make(map[string]bool)}
}

func (w *workingSet) get(username string) (*account.Account, bool) {
	a, ok := w.next[username]
	return a, ok
}

func (w *workingSet) edit(username string) *account.Account {
	if !w.cloned[username] {
		w.next[username] = w.next[username].Clone()
		w.cloned[username] = true
	}
	return w.next[username]
}

func (w *workingSet) insert(a *account.Account) {
	w.next[a.Username] = a
	w.cloned[a.Username] = true
}

// commit persists the working set and makes it current. On failure the
// committed mapping is left untouched and an ErrIO error is returned.
// Callers hold s.mu.
func (s *Service) commit(ctx context.Context, w *workingSet, log *slog.Logger) error {
	if s.opts.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.StoreTimeout)
		defer cancel()
	}
	if err := s.store.Save(ctx, w.next); err != nil {
		log.Error("persisting accounts failed, change discarded", "error", err)
		if errors.Is(err, domain.ErrIO) {
			return err
		}
		return domain.Wrap(domain.ErrIO, msgSaveFailed, err)
	}
	s.accounts = w.next
	return nil
}

// publish emits events after a commit. Failures are logged only: the
// change they describe is already durable.
func (s *Service) publish(ctx context.Context, evts ...events.Event) {
	if s.bus == nil {
		return
	}
	for _, e := range evts {
		if err := s.bus.Emit(ctx, e); err != nil {
			s.logger.Warn("event publish failed", "type", e.Type(), "error", err)
		}
	}
}

// now returns the commit timestamp at second resolution.
func (s *Service) now() time.Time {
	return s.opts.Now().Truncate(time.Second)
}

// session resolves sid to a username. Callers hold s.mu.
func (s *Service) session(sid uuid.UUID) (string, error) {
	sess, ok := s.sessions[sid]
	if !ok {
		return "", errLoginRequired
	}
	if _, ok := s.accounts[sess.Username]; !ok {
		return "", errLoginRequired
	}
	return sess.Username, nil
}

func (s *Service) money(d decimal.Decimal) string {
	return s.opts.CurrencySymbol + d.StringFixed(2)
}

func meta(username string, at time.Time) events.Meta {
	return events.Meta{Username: username, OccurredAt: at}
}
