package engine

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/notify"
	"github.com/dshills/inkwell/internal/engine/paste"
	"github.com/dshills/inkwell/internal/engine/style"
	"github.com/dshills/inkwell/internal/engine/traverse"
	"github.com/dshills/inkwell/internal/event"
)

// Default configuration values.
const (
	DefaultChangeDelay  = notify.DefaultDelay
	DefaultGuardTimeout = traverse.DefaultTimeout
	DefaultGuardSteps   = traverse.DefaultMaxSteps
)

// Option configures a Surface during creation.
type Option func(*Surface)

// WithRoot sets the document root. It must satisfy the document model
// invariants.
func WithRoot(root *dom.Node) Option {
	return func(s *Surface) {
		s.root = root
	}
}

// WithDocument sets the initial document.
func WithDocument(d content.Document) Option {
	return func(s *Surface) {
		s.initDoc = &d
	}
}

// WithSelection sets the host selection the surface mirrors. The default
// is an in-memory selection.
func WithSelection(sel dom.Selection) Option {
	return func(s *Surface) {
		s.sel = sel
	}
}

// WithMeasurer sets the measurer used for selection rectangles.
func WithMeasurer(m dom.Measurer) Option {
	return func(s *Surface) {
		s.measurer = m
	}
}

// WithClock sets the clock driving the change notifier and the safety
// guard.
func WithClock(c clockwork.Clock) Option {
	return func(s *Surface) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithChangeDelay sets the debounce delay of change events.
func WithChangeDelay(d time.Duration) Option {
	return func(s *Surface) {
		if d > 0 {
			s.changeDelay = d
		}
	}
}

// WithGuard sets the safety guard budget of multi-leaf commands.
func WithGuard(timeout time.Duration, maxSteps int) Option {
	return func(s *Surface) {
		if timeout > 0 {
			s.guardTimeout = timeout
		}
		if maxSteps > 0 {
			s.guardSteps = maxSteps
		}
	}
}

// WithDefaultStyles overlays m on the engine-wide default styles.
func WithDefaultStyles(m style.Map) Option {
	return func(s *Surface) {
		for k, v := range m {
			s.defaults[k] = v
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBus sets the bus events are published on. A surface given a bus
// does not close it.
func WithBus(b *event.Bus) Option {
	return func(s *Surface) {
		s.bus = b
	}
}

// WithNormalizer sets the paste normalizer. The default applies the
// surface's default styles.
func WithNormalizer(n *paste.Normalizer) Option {
	return func(s *Surface) {
		s.normalizer = n
	}
}

// WithSessionID sets the identifier carried by every published event.
// The default is a random UUID.
func WithSessionID(id string) Option {
	return func(s *Surface) {
		if id != "" {
			s.id = id
		}
	}
}

// WithValidation makes every command verify the document invariants
// before it commits. A violation rolls the command back.
func WithValidation(enabled bool) Option {
	return func(s *Surface) {
		s.validate = enabled
	}
}
