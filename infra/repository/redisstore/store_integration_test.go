//go:build integration

package redisstore

import (
	"context"
	"testing"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.0.5",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return "redis://" + host + ":" + port.Port()
}

func TestStore_RedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFromURL(ctx, startRedis(t), "test:users", discard)
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)

	alice := account.New("alice", "ph", "pin")
	alice.Balance = decimal.RequireFromString("12.34")
	require.NoError(t, s.Save(ctx, account.Mapping{"alice": alice}))

	m, err = s.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, m, "alice")
	assert.Equal(t, "12.34", m["alice"].Balance.String())

	require.NoError(t, s.client.Set(ctx, "test:users", "{garbage", 0).Err())
	m, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}
