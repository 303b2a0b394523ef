package traverse

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Default guard limits.
const (
	DefaultTimeout  = time.Second
	DefaultMaxSteps = 1 << 20
)

// ErrGuardTripped indicates a walk exceeded its time or step budget.
var ErrGuardTripped = errors.New("safety guard tripped")

// ErrEndNotReached indicates a range walk ran off the tree before finding
// its end leaf.
var ErrEndNotReached = errors.New("range end not reached")

// GuardError reports a tripped guard. It always wraps ErrGuardTripped.
type GuardError struct {
	// Op names the walk that was aborted.
	Op string

	// Steps is the number of steps taken.
	Steps int

	// Elapsed is the wall-clock time spent.
	Elapsed time.Duration
}

// Error implements the error interface.
func (e *GuardError) Error() string {
	return fmt.Sprintf("%s: %s aborted after %d steps in %s", ErrGuardTripped, e.Op, e.Steps, e.Elapsed)
}

// Unwrap returns ErrGuardTripped.
func (e *GuardError) Unwrap() error { return ErrGuardTripped }

// Limits configures guards.
type Limits struct {
	Clock    clockwork.Clock
	Timeout  time.Duration
	MaxSteps int
}

// DefaultLimits returns limits backed by the real clock.
func DefaultLimits() Limits {
	return Limits{
		Clock:    clockwork.NewRealClock(),
		Timeout:  DefaultTimeout,
		MaxSteps: DefaultMaxSteps,
	}
}

// Guard bounds a single loop.
type Guard struct {
	op     string
	limits Limits
	start  time.Time
	steps  int
}

// NewGuard starts a guard for the named operation. Zero limits fall back
// to the defaults.
func NewGuard(op string, l Limits) *Guard {
	if l.Clock == nil {
		l.Clock = clockwork.NewRealClock()
	}
	if l.Timeout <= 0 {
		l.Timeout = DefaultTimeout
	}
	if l.MaxSteps <= 0 {
		l.MaxSteps = DefaultMaxSteps
	}
	return &Guard{op: op, limits: l, start: l.Clock.Now()}
}

// Step records one iteration and fails once either budget is exhausted.
func (g *Guard) Step() error {
	g.steps++
	elapsed := g.limits.Clock.Since(g.start)
	if g.steps > g.limits.MaxSteps || elapsed > g.limits.Timeout {
		return &GuardError{Op: g.op, Steps: g.steps, Elapsed: elapsed}
	}
	return nil
}

// Steps returns the number of steps recorded so far.
func (g *Guard) Steps() int { return g.steps }
