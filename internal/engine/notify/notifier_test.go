package notify

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func newTestNotifier() (*Notifier, *clockwork.FakeClock, *atomic.Int32) {
	clock := clockwork.NewFakeClock()
	var calls atomic.Int32
	n := New(func() { calls.Add(1) }, WithClock(clock), WithDelay(500*time.Millisecond))
	return n, clock, &calls
}

func TestNotifyDebouncedCoalesces(t *testing.T) {
	n, clock, calls := newTestNotifier()

	for i := 0; i < 5; i++ {
		n.NotifyDebounced()
		clock.Advance(100 * time.Millisecond)
	}
	assert.True(t, n.HasPendingChanges())
	assert.Equal(t, int32(0), calls.Load())

	clock.Advance(500 * time.Millisecond)
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, n.HasPendingChanges())

	clock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNotifyImmediatelyCancelsTimer(t *testing.T) {
	n, clock, calls := newTestNotifier()

	n.NotifyDebounced()
	n.NotifyImmediately()
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, n.HasPendingChanges())

	clock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "cancelled timer must not fire")

	n.NotifyImmediately()
	assert.Equal(t, int32(2), calls.Load(), "immediate delivery does not require a pending change")
}

func TestCancelAndFlush(t *testing.T) {
	n, clock, calls := newTestNotifier()

	n.NotifyDebounced()
	n.Cancel()
	clock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	n.Flush()
	assert.Equal(t, int32(0), calls.Load(), "flush without a pending change is a no-op")

	n.NotifyDebounced()
	n.Flush()
	assert.Equal(t, int32(1), calls.Load())
}

func TestDisposeFlushesPending(t *testing.T) {
	n, clock, calls := newTestNotifier()

	n.NotifyDebounced()
	n.Dispose()
	assert.Equal(t, int32(1), calls.Load())

	n.NotifyDebounced()
	n.NotifyImmediately()
	clock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "disposed notifier ignores further changes")
	n.Dispose()
}

func TestDefaults(t *testing.T) {
	n := New(nil, WithDelay(-1), WithClock(nil))
	assert.Equal(t, DefaultDelay, n.Delay())
	n.NotifyImmediately()
	n.Dispose()
}
