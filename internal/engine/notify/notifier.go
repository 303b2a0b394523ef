package notify

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDelay is the default quiet period before a debounced
// notification fires.
const DefaultDelay = 750 * time.Millisecond

// Notifier delivers debounced or immediate change notifications.
//
// All methods are safe for concurrent use. The callback never runs
// concurrently with itself from the same notifier.
type Notifier struct {
	mu       sync.Mutex
	fire     sync.Mutex
	clock    clockwork.Clock
	delay    time.Duration
	timer    clockwork.Timer
	pending  bool
	disposed bool
	seq      uint64 // detects stale timer callbacks
	callback func()
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock sets the clock driving the debounce timer.
func WithClock(c clockwork.Clock) Option {
	return func(n *Notifier) {
		if c != nil {
			n.clock = c
		}
	}
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.delay = d
		}
	}
}

// New creates a notifier that calls callback when a change is delivered.
func New(callback func(), opts ...Option) *Notifier {
	n := &Notifier{
		clock:    clockwork.NewRealClock(),
		delay:    DefaultDelay,
		callback: callback,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Delay returns the debounce delay.
func (n *Notifier) Delay() time.Duration { return n.delay }

// NotifyDebounced marks a change pending and restarts the quiet period.
func (n *Notifier) NotifyDebounced() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disposed {
		return
	}

	n.pending = true
	n.seq++
	current := n.seq

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = n.clock.AfterFunc(n.delay, func() {
		n.mu.Lock()
		if !n.pending || n.seq != current {
			n.mu.Unlock()
			return
		}
		n.pending = false
		n.timer = nil
		n.mu.Unlock()
		n.deliver()
	})
}

// NotifyImmediately cancels any scheduled notification and delivers one
// synchronously.
func (n *Notifier) NotifyImmediately() {
	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return
	}
	n.stopLocked()
	n.pending = false
	n.mu.Unlock()
	n.deliver()
}

// Flush delivers a pending notification synchronously, if there is one.
func (n *Notifier) Flush() {
	n.mu.Lock()
	if !n.pending {
		n.mu.Unlock()
		return
	}
	n.stopLocked()
	n.pending = false
	n.mu.Unlock()
	n.deliver()
}

// Cancel drops a pending notification without delivering it.
func (n *Notifier) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	n.pending = false
}

// HasPendingChanges reports whether a debounced notification is waiting.
func (n *Notifier) HasPendingChanges() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending
}

// Dispose flushes a pending notification and stops the notifier. Later
// calls to notify are ignored. Dispose is idempotent.
func (n *Notifier) Dispose() {
	n.Flush()
	n.mu.Lock()
	n.stopLocked()
	n.disposed = true
	n.mu.Unlock()
}

// stopLocked stops the timer and invalidates any callback already running.
func (n *Notifier) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.seq++
}

func (n *Notifier) deliver() {
	if n.callback == nil {
		return
	}
	n.fire.Lock()
	defer n.fire.Unlock()
	n.callback()
}
