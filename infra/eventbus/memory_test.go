package eventbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *MemoryEventBus {
	return NewWithMemory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMemoryEventBus_EmitDispatchesByType(t *testing.T) {
	bus := newTestBus()

	var got []string
	bus.Register(events.EventTypeFundsDeposited, func(_ context.Context, e events.Event) error {
		got = append(got, "first:"+e.(events.FundsDeposited).Username)
		return nil
	})
	bus.Register(events.EventTypeFundsDeposited, func(_ context.Context, e events.Event) error {
		got = append(got, "second:"+e.(events.FundsDeposited).Username)
		return nil
	})
	bus.Register(events.EventTypeFundsWithdrawn, func(context.Context, events.Event) error {
		t.Fatal("withdraw handler must not run for a deposit")
		return nil
	})

	err := bus.Emit(context.Background(), events.FundsDeposited{Meta: events.Meta{Username: "alice"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:alice", "second:alice"}, got)
	assert.Len(t, bus.Published(), 1)
}

func TestMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	bus := newTestBus()

	calls := 0
	bus.Register(events.EventTypeAccountCreated, func(context.Context, events.Event) error {
		calls++
		return errors.New("boom")
	})
	bus.Register(events.EventTypeAccountCreated, func(context.Context, events.Event) error {
		calls++
		panic("handler panic")
	})
	bus.Register(events.EventTypeAccountCreated, func(context.Context, events.Event) error {
		calls++
		return nil
	})

	err := bus.Emit(context.Background(), events.AccountCreated{Meta: events.Meta{Username: "bob"}})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestMemoryEventBus_ClearPublished(t *testing.T) {
	bus := newTestBus()
	require.NoError(t, bus.Emit(context.Background(), events.SessionEnded{}))
	require.Len(t, bus.Published(), 1)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}
