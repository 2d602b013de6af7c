package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RedisEventBus appends every event to a Redis stream, giving other
// processes a durable feed of ledger activity, and dispatches it to the
// handlers registered in this process.
type RedisEventBus struct {
	client   *redis.Client
	stream   string
	maxLen   int64
	handlers map[events.EventType][]eventbus.HandlerFunc
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewWithRedis creates a Redis-backed event bus.
// url: Redis connection URL (e.g., "redis://localhost:6379")
// stream: name of the Redis stream to append to
// maxLen: approximate cap on stream length; 0 keeps everything
func NewWithRedis(ctx context.Context, url, stream string, maxLen int64, logger *slog.Logger) (*RedisEventBus, error) {
	if url == "" || stream == "" {
		return nil, fmt.Errorf("redis event bus: url and stream are required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	return &RedisEventBus{
		client:   client,
		stream:   stream,
		maxLen:   maxLen,
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
		logger:   logger.With("component", "redis-event-bus"),
	}, nil
}

// Register registers a local handler for a specific event type.
func (b *RedisEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit appends the event to the stream and then runs the local handlers.
// Local handlers run even when the append fails; the append error is returned.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	b.logger.Debug("emitting event", "type", event.Type())

	err := b.append(ctx, event)
	if err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
	}

	b.mu.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[events.EventType(event.Type())]...)
	b.mu.RUnlock()
	dispatch(ctx, b.logger, handlers, event)

	return err
}

func (b *RedisEventBus) append(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis event bus: marshal failed: %w", err)
	}
	env, err := json.Marshal(envelope{Type: event.Type(), Payload: data})
	if err != nil {
		return fmt.Errorf("redis event bus: envelope marshal failed: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"event": string(env)},
	}
	if b.maxLen > 0 {
		args.MaxLen = b.maxLen
		args.Approx = true
	}
	if err := b.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (b *RedisEventBus) Close() error {
	return b.client.Close()
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
