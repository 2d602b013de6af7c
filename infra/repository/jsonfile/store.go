// Package jsonfile persists the account mapping as a single JSON document
// on disk, the layout used by existing users.json snapshots.
package jsonfile

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	infrarepo "github.com/amirasaad/atm/infra/repository"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/repository"
)

// DefaultPath is the snapshot file used when none is configured.
const DefaultPath = "users.json"

// Store reads and writes the snapshot file at Path. Writes go to a
// temporary file in the same directory which is synced and then renamed
// over the snapshot, so a crash mid-write leaves the previous file intact.
type Store struct {
	path   string
	logger *slog.Logger
	// synced runs after the temporary file is flushed; tests use it to
	// expire the context mid-write.
	synced func()
}

// New returns a store backed by path.
func New(path string, logger *slog.Logger) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path, logger: logger.With("store", "jsonfile", "path", path)}
}

// Path returns the snapshot location.
func (s *Store) Path() string { return s.path }

// Load implements repository.Store. A missing, empty, unreadable or corrupt
// file yields an empty mapping; every case but "missing" is logged as a warning.
func (s *Store) Load(ctx context.Context) (account.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("no snapshot found, starting empty")
		} else {
			s.logger.Warn("snapshot unreadable, starting empty", "error", err)
		}
		return account.Mapping{}, nil
	}
	m, err := repository.Decode(data, s.logger)
	if err != nil {
		s.logger.Warn("snapshot corrupt, starting empty", "error", err)
		return account.Mapping{}, nil
	}
	s.logger.Debug("snapshot loaded", "accounts", len(m))
	return m, nil
}

// Save implements repository.Store.
func (s *Store) Save(ctx context.Context, m account.Mapping) error {
	if err := ctx.Err(); err != nil {
		return infrarepo.MapSaveError(err)
	}
	data, err := repository.Encode(m)
	if err != nil {
		return infrarepo.MapSaveError(err)
	}
	return infrarepo.WrapSave(func() error {
		return s.writeAtomic(ctx, data)
	})
}

// writeAtomic gives up before the rename once ctx is done, leaving the
// previous snapshot in place.
func (s *Store) writeAtomic(ctx context.Context, data []byte) (err error) {
	dir := filepath.Dir(s.path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0o600); err != nil {
		return err
	}
	if s.synced != nil {
		s.synced()
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

var _ repository.Store = (*Store)(nil)
