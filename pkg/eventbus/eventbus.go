package eventbus

import (
	"context"

	"github.com/amirasaad/atm/pkg/domain/events"
)

// HandlerFunc handles one event. A returned error is logged by the bus and
// does not stop delivery to the remaining handlers.
type HandlerFunc func(ctx context.Context, event events.Event) error

// Bus defines the contract for publishing and subscribing to domain events.
type Bus interface {
	Register(eventType events.EventType, handler HandlerFunc)
	Emit(ctx context.Context, event events.Event) error
}
