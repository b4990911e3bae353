// ================================
// File: internal/events/handler.go
// ================================
package events

import (
	"context"
)

// Handler consumes events delivered by the Bus. Implementations must not
// block: delivery for a type is sequential, so a slow handler stalls every
// other subscriber of that type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Subscription is the handle returned by Bus.Subscribe. Unsubscribe detaches
// the handler; a delivery already in flight may still reach it.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	id       string
	eventBus *Bus
	typ      EventType
}

func (s *subscription) Unsubscribe() {
	s.eventBus.unsubscribe(s.id, s.typ)
}
