package event

import "context"

// Priority orders handlers on the same topic. Lower values run first.
type Priority int

// Standard priorities.
const (
	PriorityHigh   Priority = 0
	PriorityNormal Priority = 100
	PriorityLow    Priority = 200
)

// String returns the priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Handler processes a published event. The event is type-erased; use
// SubscribeTyped for typed delivery.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event any) error { return f(ctx, event) }
