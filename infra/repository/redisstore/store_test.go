package redisstore

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// unreachable points at a port nothing listens on.
func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestStore_SaveFailureIsIOError(t *testing.T) {
	s := New(unreachable(), "", discard)
	defer s.Close() //nolint:errcheck

	err := s.Save(context.Background(), account.Mapping{"alice": account.New("alice", "p", "q")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIO)
}

func TestStore_LoadFailureIsReturned(t *testing.T) {
	s := New(unreachable(), "k", discard)
	defer s.Close() //nolint:errcheck

	_, err := s.Load(context.Background())
	assert.Error(t, err)
}

func TestNewFromURL_Validation(t *testing.T) {
	_, err := NewFromURL(context.Background(), "", "", discard)
	assert.Error(t, err)

	_, err = NewFromURL(context.Background(), "http://not-redis", "", discard)
	assert.Error(t, err)
}

func TestNew_DefaultKey(t *testing.T) {
	s := New(unreachable(), "", discard)
	defer s.Close() //nolint:errcheck
	assert.Equal(t, DefaultKey, s.key)
}
