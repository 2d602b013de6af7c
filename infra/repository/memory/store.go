// Package memory is an in-process store for tests and throwaway runs.
package memory

import (
	"context"
	"sync"

	infrarepo "github.com/amirasaad/atm/infra/repository"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/repository"
)

// Store keeps a deep copy of the last saved mapping.
type Store struct {
	mu    sync.Mutex
	data  account.Mapping
	saves int
	fail  error
}

// New returns an empty store, or one seeded with a copy of initial.
func New(initial account.Mapping) *Store {
	if initial == nil {
		initial = account.Mapping{}
	}
	return &Store{data: initial.Clone()}
}

// Load implements repository.Store.
func (s *Store) Load(ctx context.Context) (account.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone(), nil
}

// Save implements repository.Store.
func (s *Store) Save(ctx context.Context, m account.Mapping) error {
	if err := ctx.Err(); err != nil {
		return infrarepo.MapSaveError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return infrarepo.MapSaveError(s.fail)
	}
	s.data = m.Clone()
	s.saves++
	return nil
}

// SetFailure switches Save failures on (non-nil err) or off.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Saves counts successful saves.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

var _ repository.Store = (*Store)(nil)
