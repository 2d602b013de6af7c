// Package redisstore keeps the whole snapshot document under one Redis key.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	infrarepo "github.com/amirasaad/atm/infra/repository"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/repository"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the key used when none is configured.
const DefaultKey = "atm:users"

// Store is a repository.Store over a single Redis string key. SET replaces
// the value atomically, so readers never see a partial snapshot.
type Store struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// New returns a store using client and key.
func New(client *redis.Client, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key, logger: logger.With("store", "redis", "key", key)}
}

// NewFromURL parses a redis:// URL, connects and pings the server.
func NewFromURL(ctx context.Context, url, key string, logger *slog.Logger) (*Store, error) {
	if url == "" {
		return nil, errors.New("STORE_REDIS_URL is not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis store: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis store: connection failed: %w", err)
	}
	return New(client, key, logger), nil
}

// Load implements repository.Store. A missing key is an empty mapping; an
// unparsable value is logged and treated the same way.
func (s *Store) Load(ctx context.Context) (account.Mapping, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.logger.Info("no snapshot found, starting empty")
		return account.Mapping{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: get: %w", err)
	}
	m, err := repository.Decode(data, s.logger)
	if err != nil {
		s.logger.Warn("snapshot corrupt, starting empty", "error", err)
		return account.Mapping{}, nil
	}
	return m, nil
}

// Save implements repository.Store.
func (s *Store) Save(ctx context.Context, m account.Mapping) error {
	data, err := repository.Encode(m)
	if err != nil {
		return infrarepo.MapSaveError(err)
	}
	return infrarepo.WrapSave(func() error {
		return s.client.Set(ctx, s.key, data, 0).Err()
	})
}

// Close releases the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ repository.Store = (*Store)(nil)
