package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/eventbus"
)

// MemoryEventBus is a synchronous in-process implementation of the Bus
// interface. Handlers run on the emitting goroutine, in registration order.
type MemoryEventBus struct {
	handlers  map[events.EventType][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers:  make(map[events.EventType][]eventbus.HandlerFunc),
		logger:    logger.With("bus", "memory"),
		published: make([]events.Event, 0),
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches the event to all registered handlers for its type.
// Handler errors and panics are logged; Emit itself never fails.
func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[events.EventType(event.Type())]...)
	b.mu.Unlock()

	dispatch(ctx, b.logger, handlers, event)
	return nil
}

// Published returns a copy of every event emitted so far.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event(nil), b.published...)
}

// ClearPublished forgets the recorded events.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = make([]events.Event, 0)
}

func dispatch(ctx context.Context, logger *slog.Logger, handlers []eventbus.HandlerFunc, event events.Event) {
	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic recovered in event handler", "type", event.Type(), "panic", r)
				}
			}()
			if err := handler(ctx, event); err != nil {
				logger.Error("failed to process event", "type", event.Type(), "error", err)
			}
		}()
	}
}

var _ eventbus.Bus = (*MemoryEventBus)(nil)
