package event

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/inkwell/internal/event/topic"
)

// PanicHandler observes recovered handler panics.
type PanicHandler func(event any, recovered any)

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets a function called for every recovered panic.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *Bus) {
		b.panicHandler = h
	}
}

// Stats reports bus activity.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerErrors uint64
	HandlerPanics uint64
	Subscriptions int
}

// Bus delivers events synchronously in the publisher's goroutine.
// It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	closed bool

	panicHandler PanicHandler

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// NewBus creates a bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is a registered handler.
type Subscription struct {
	id       string
	pattern  topic.Topic
	handler  Handler
	priority Priority
	seq      int
	bus      *Bus
	active   atomic.Bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*Subscription)

// WithPriority sets the subscription's priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(s *Subscription) {
		s.priority = p
	}
}

// ID returns the subscription ID.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed pattern.
func (s *Subscription) Topic() topic.Topic { return s.pattern }

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool { return s.active.Load() }

// Cancel unsubscribes. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	_ = s.bus.Unsubscribe(s)
}

// Subscribe registers h for every topic matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	s := &Subscription{
		id:       uuid.NewString(),
		pattern:  pattern,
		handler:  h,
		priority: PriorityNormal,
		bus:      b,
	}
	for _, opt := range opts {
		opt(s)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	if n := len(b.subs); n > 0 {
		s.seq = b.subs[n-1].seq + 1
	}
	s.active.Store(true)
	b.subs = append(b.subs, s)
	return s, nil
}

// SubscribeFunc registers fn for every topic matching pattern.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// SubscribeTyped registers fn for events of payload type T. Events with
// other payload types are skipped.
func SubscribeTyped[T any](b *Bus, pattern topic.Topic, fn func(context.Context, Event[T]) error, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, HandlerFunc(func(ctx context.Context, ev any) error {
		typed, ok := ev.(Event[T])
		if !ok {
			return nil
		}
		return fn(ctx, typed)
	}), opts...)
}

// Unsubscribe removes s.
func (b *Bus) Unsubscribe(s *Subscription) error {
	if s == nil {
		return ErrSubscriptionNotFound
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.Index(b.subs, s)
	if i < 0 {
		return ErrSubscriptionNotFound
	}
	s.active.Store(false)
	b.subs = slices.Delete(b.subs, i, i+1)
	return nil
}

// Publish delivers ev to every matching subscription and returns the
// joined handler errors. Delivery stops early when ctx is cancelled.
func (b *Bus) Publish(ctx context.Context, ev any) error {
	tp, ok := ev.(TopicProvider)
	if !ok {
		return fmt.Errorf("%w: %T has no topic", ErrInvalidEvent, ev)
	}
	name := tp.EventTopic()
	if !name.IsValid() || name.IsPattern() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, name)
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	var targets []*Subscription
	for _, s := range b.subs {
		if name.Matches(s.pattern) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()
	b.published.Add(1)

	slices.SortStableFunc(targets, func(a, c *Subscription) int {
		if a.priority != c.priority {
			return int(a.priority - c.priority)
		}
		return a.seq - c.seq
	})

	var errs []error
	for _, s := range targets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !s.IsActive() {
			continue
		}
		if err := b.deliver(ctx, s, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, s *Subscription, ev any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			if b.panicHandler != nil {
				b.panicHandler(ev, r)
			}
			err = &PanicError{
				SubscriptionID: s.id,
				Topic:          string(s.pattern),
				Value:          r,
				Stack:          string(debug.Stack()),
			}
		}
	}()
	b.delivered.Add(1)
	if herr := s.handler.Handle(ctx, ev); herr != nil {
		b.handlerErrors.Add(1)
		return &HandlerError{SubscriptionID: s.id, Topic: string(s.pattern), Err: herr}
	}
	return nil
}

// Close drops every subscription and rejects further use.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		s.active.Store(false)
	}
	b.subs = nil
	b.closed = true
}

// Stats returns activity counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerErrors: b.handlerErrors.Load(),
		HandlerPanics: b.handlerPanics.Load(),
		Subscriptions: n,
	}
}
