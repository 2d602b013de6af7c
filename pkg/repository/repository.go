package repository

import (
	"context"

	"github.com/amirasaad/atm/pkg/domain/account"
)

// Store is the persistence adapter for the ledger. The whole account
// mapping is the unit of persistence: there are no per-account writes.
type Store interface {
	// Load returns the persisted mapping. A store that has never been
	// written, or whose contents cannot be parsed, yields an empty mapping.
	// Errors are reserved for a backend that cannot be reached at all.
	Load(ctx context.Context) (account.Mapping, error)
	// Save replaces the persisted mapping with m. Failures are returned
	// wrapped in domain.ErrIO and the previous contents stay authoritative.
	Save(ctx context.Context, m account.Mapping) error
}
