package repository

import (
	"context"
	"errors"

	"github.com/amirasaad/atm/pkg/domain"
)

// Messages shown to users when persistence fails.
const (
	MsgSaveFailed  = "Could not save account data."
	MsgSaveTimeout = "Timed out saving account data."
)

// MapSaveError converts a backend failure into a domain.ErrIO error,
// keeping the original error in the chain. Errors that already carry
// domain.ErrIO are returned unchanged.
func MapSaveError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrIO) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Wrap(domain.ErrIO, MsgSaveTimeout, err)
	}
	return domain.Wrap(domain.ErrIO, MsgSaveFailed, err)
}

// WrapSave runs a store write and maps its error.
//
// Usage:
//
//	return WrapSave(func() error {
//	    return os.Rename(tmp, path)
//	})
func WrapSave(op func() error) error {
	return MapSaveError(op())
}
