package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/notify"
	"github.com/dshills/inkwell/internal/engine/paste"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/engine/style"
	"github.com/dshills/inkwell/internal/engine/tracking"
	"github.com/dshills/inkwell/internal/engine/traverse"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/event/events"
	"github.com/dshills/inkwell/internal/event/topic"
)

// Surface is the editing surface of one document.
type Surface struct {
	mu sync.Mutex

	// locked is set while mu is held; events emitted meanwhile are queued
	// and published once mu is released.
	locked    bool
	queue     []any
	inCommand bool

	id         string
	root       *dom.Node
	initDoc    *content.Document
	sel        dom.Selection
	measurer   dom.Measurer
	ctrl       *selection.Controller
	ledger     *tracking.Ledger
	notifier   *notify.Notifier
	normalizer *paste.Normalizer
	bus        *event.Bus
	ownBus     bool
	logger     *zap.Logger

	clock        clockwork.Clock
	changeDelay  time.Duration
	guardTimeout time.Duration
	guardSteps   int
	defaults     style.Map
	validate     bool

	focused bool
	closed  bool
}

// New creates a surface. Without WithRoot or WithDocument it holds the
// canonical empty document.
func New(opts ...Option) (*Surface, error) {
	s := &Surface{
		id:           uuid.NewString(),
		logger:       zap.NewNop(),
		clock:        clockwork.NewRealClock(),
		changeDelay:  DefaultChangeDelay,
		guardTimeout: DefaultGuardTimeout,
		guardSteps:   DefaultGuardSteps,
		defaults:     style.Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.initDoc != nil {
		root, err := content.Import(*s.initDoc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		s.root = root
	}
	if s.root == nil {
		s.root = content.CreateEmptyRoot(nil)
	}
	if err := content.Validate(s.root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if s.sel == nil {
		s.sel = dom.NewMemorySelection(s.measurer)
	}
	if s.bus == nil {
		s.bus = event.NewBus()
		s.ownBus = true
	}
	if s.normalizer == nil {
		s.normalizer = paste.New(paste.WithDefaults(s.defaults))
	}

	s.ledger = tracking.NewLedger()
	s.ctrl = selection.New(s.root, s.sel, s.ledger,
		selection.WithDefaults(s.defaults),
		selection.WithLimits(s.limits()),
		selection.WithMeasurer(s.measurer),
		selection.WithStyleListener(s.styleChanged),
	)
	s.notifier = notify.New(s.changed,
		notify.WithClock(s.clock),
		notify.WithDelay(s.changeDelay),
	)
	return s, nil
}

func (s *Surface) limits() traverse.Limits {
	return traverse.Limits{
		Clock:    s.clock,
		Timeout:  s.guardTimeout,
		MaxSteps: s.guardSteps,
	}
}

// ============================================================================
// Locking and event delivery
// ============================================================================

func (s *Surface) lock() {
	s.mu.Lock()
	s.locked = true
}

// unlock releases the mutex and publishes the events queued meanwhile.
func (s *Surface) unlock() {
	queued := s.queue
	s.queue = nil
	s.locked = false
	s.mu.Unlock()
	for _, ev := range queued {
		s.publish(ev)
	}
}

func (s *Surface) emit(ev any) {
	if s.locked {
		s.queue = append(s.queue, ev)
		return
	}
	s.publish(ev)
}

func (s *Surface) publish(ev any) {
	if err := s.bus.Publish(context.Background(), ev); err != nil && !errors.Is(err, event.ErrBusClosed) {
		s.logger.Warn("event handler failed",
			zap.String("session", s.id),
			zap.Error(err),
		)
	}
}

// styleChanged receives style changes from the controller. Changes made
// by a command are reported once the command commits.
func (s *Surface) styleChanged(r style.Record) {
	if s.inCommand || s.closed {
		return
	}
	s.emit(s.styleEvent(r))
}

// eventSource is the Source of every event a surface publishes; the
// correlation ID carries the session.
const eventSource = "engine.surface"

// changed is the notifier callback. It may run on the notifier's timer
// goroutine, so it only touches the bus.
func (s *Surface) changed() {
	s.publish(event.NewEvent(events.TopicChange, events.Change{SessionID: s.id}, eventSource).WithCorrelation(s.id))
}

func (s *Surface) styleEvent(r style.Record) event.Event[events.StyleChange] {
	return event.NewEvent(events.TopicStyleChange, events.StyleChange{SessionID: s.id, Style: r}, eventSource).WithCorrelation(s.id)
}

func (s *Surface) layoutEvent(full bool) event.Event[events.NeedsLayout] {
	return event.NewEvent(events.TopicNeedsLayout, events.NeedsLayout{
		SessionID: s.id,
		Added:     s.ledger.Added(),
		Updated:   s.ledger.Updated(),
		Removed:   s.ledger.Removed(),
		Full:      full,
	}, eventSource).WithCorrelation(s.id)
}

// ============================================================================
// Input dispatch
// ============================================================================

// HandleInput maps a host input event onto an editing command and runs
// it. Composition input and host history events pass through without
// being prevented; input without a command is prevented and does
// nothing. A failed command leaves the document as it was and returns a
// *CommandError.
func (s *Surface) HandleInput(ev InputEvent) (Result, error) {
	s.lock()
	defer s.unlock()
	if s.closed {
		return Result{}, ErrClosed
	}
	s.logger.Debug("dispatch input",
		zap.String("session", s.id),
		zap.Stringer("input", ev.Type),
	)

	switch ev.Type {
	case InputInsertText:
		return s.run(ev.Type.String(), func() error {
			return s.ctrl.InsertText(ev.Data)
		})
	case InputInsertParagraph:
		return s.run(ev.Type.String(), func() error {
			if s.ctrl.HasSelection() && !s.ctrl.IsCollapsed() {
				return s.ctrl.ReplaceWithParagraph()
			}
			return s.ctrl.InsertParagraph()
		})
	case InputDeleteByCut:
		return s.run(ev.Type.String(), func() error {
			return s.ctrl.RemoveSelected()
		})
	case InputDeleteContentBackward:
		return s.run(ev.Type.String(), s.ctrl.DeleteBackward)
	case InputDeleteContentForward:
		return s.run(ev.Type.String(), s.ctrl.DeleteForward)
	case InputInsertFromPaste:
		data := ev.Paste
		if data.IsEmpty() {
			data.Text = ev.Data
		}
		return s.paste(data)
	case InputInsertCompositionText:
		return Result{}, nil
	case InputCompositionEnd:
		s.emit(s.layoutEvent(true))
		s.notifier.NotifyDebounced()
		return Result{}, nil
	case InputHistoryUndo, InputHistoryRedo:
		return Result{}, nil
	case InputUnknown:
		return Result{Prevented: true}, nil
	}
	return Result{Prevented: true}, nil
}

// Paste inserts a clipboard payload at the caret, replacing a range
// selection.
func (s *Surface) Paste(d paste.Data) (Result, error) {
	s.lock()
	defer s.unlock()
	if s.closed {
		return Result{}, ErrClosed
	}
	return s.paste(d)
}

func (s *Surface) paste(d paste.Data) (Result, error) {
	const op = "paste"
	if d.IsEmpty() {
		return Result{Prevented: true}, nil
	}
	frag, err := s.normalizer.Normalize(d)
	if err != nil {
		s.logger.Error("command aborted",
			zap.String("session", s.id),
			zap.String("op", op),
			zap.Error(err),
		)
		return Result{Prevented: true}, &CommandError{Op: op, Err: err}
	}
	if frag.IsEmpty() {
		return Result{Prevented: true}, nil
	}
	return s.run(op, func() error {
		if s.ctrl.HasSelection() && !s.ctrl.IsCollapsed() {
			return s.ctrl.ReplaceWithPaste(frag.Paragraphs)
		}
		return s.ctrl.InsertPaste(frag.Paragraphs)
	})
}

// ApplyStyles applies styles to the selection, or to the whole document
// when nothing is selected.
func (s *Surface) ApplyStyles(styles style.Map) error {
	s.lock()
	defer s.unlock()
	if s.closed {
		return ErrClosed
	}
	_, err := s.run("apply styles", func() error {
		return s.ctrl.ApplyStyles(styles)
	})
	return err
}

// run executes one command atomically. The tree and selection are
// snapshotted first; on failure or panic both are restored, the ledger is
// discarded and nothing is published. Must be called with the lock held.
func (s *Surface) run(op string, fn func() error) (res Result, err error) {
	backup := s.root.Clone(true)
	snap := s.ctrl.Snapshot()
	before := s.ctrl.CurrentStyle()
	s.ledger.Clear()
	s.inCommand = true

	defer func() {
		if r := recover(); r != nil {
			err = &CommandError{Op: op, Err: fmt.Errorf("%w: %v", ErrCommandPanic, r)}
		}
		if err != nil {
			s.rollback(backup, snap)
			s.logger.Error("command aborted",
				zap.String("session", s.id),
				zap.String("op", op),
				zap.Error(err),
			)
			res = Result{Prevented: true}
		}
		s.ledger.Clear()
		s.inCommand = false
	}()

	if err := fn(); err != nil {
		return Result{}, &CommandError{Op: op, Err: err}
	}
	if s.validate {
		if err := content.Validate(s.root); err != nil {
			return Result{}, &CommandError{Op: op, Err: err}
		}
	}

	res = Result{
		Prevented: true,
		Added:     len(s.ledger.Added()),
		Updated:   len(s.ledger.Updated()),
		Removed:   len(s.ledger.Removed()),
	}
	if !s.ledger.IsEmpty() {
		s.emit(s.layoutEvent(s.touchesRoot()))
		s.notifier.NotifyDebounced()
	}
	if after := s.ctrl.CurrentStyle(); !after.Equal(before) {
		s.emit(s.styleEvent(after))
	}
	s.logger.Debug("command committed",
		zap.String("session", s.id),
		zap.String("op", op),
		zap.Int("added", res.Added),
		zap.Int("updated", res.Updated),
		zap.Int("removed", res.Removed),
	)
	return res, nil
}

// touchesRoot reports whether the command restyled the root, which
// invalidates the layout of the whole document.
func (s *Surface) touchesRoot() bool {
	for _, n := range s.ledger.Updated() {
		if n == s.root {
			return true
		}
	}
	return false
}

func (s *Surface) rollback(backup *dom.Node, snap selection.Snapshot) {
	s.root.ReplaceChildren(backup.Children()...)
	s.root.Style().Clear()
	s.root.Style().Merge(backup.Style())
	if err := s.ctrl.RestoreSnapshot(snap); err != nil {
		s.logger.Warn("selection not restored",
			zap.String("session", s.id),
			zap.Error(err),
		)
	}
}

// ============================================================================
// Focus
// ============================================================================

// Focus marks the surface focused and hands a selection saved on blur
// back to the host.
func (s *Surface) Focus() error {
	s.lock()
	defer s.unlock()
	if s.closed {
		return ErrClosed
	}
	s.focused = true
	return s.ctrl.RestoreSelection()
}

// Blur marks the surface unfocused. The selection is saved so commands
// keep working against it, and a pending change is delivered at once.
func (s *Surface) Blur() error {
	s.lock()
	if s.closed {
		s.unlock()
		return ErrClosed
	}
	s.focused = false
	s.ctrl.SaveSelection()
	s.unlock()
	s.notifier.Flush()
	return nil
}

// IsFocused reports whether the surface has focus.
func (s *Surface) IsFocused() bool {
	s.lock()
	defer s.unlock()
	return s.focused
}

// ============================================================================
// Selection
// ============================================================================

// Select moves the selection onto the given boundary points.
func (s *Surface) Select(anchor, focus dom.Position) error {
	s.lock()
	defer s.unlock()
	if s.closed {
		return ErrClosed
	}
	return s.ctrl.Select(anchor, focus)
}

// SelectRange selects between two text offsets. Paragraph boundaries
// count as one offset.
func (s *Surface) SelectRange(start, end int) error {
	s.lock()
	defer s.unlock()
	if s.closed {
		return ErrClosed
	}
	return s.ctrl.SelectRange(start, end)
}

// SelectAll selects the whole document.
func (s *Surface) SelectAll() error {
	s.lock()
	defer s.unlock()
	if s.closed {
		return ErrClosed
	}
	return s.ctrl.SelectAll()
}

// SelectionRange returns the selection as text offsets in document
// order. ok is false when nothing is selected.
func (s *Surface) SelectionRange() (start, end int, ok bool) {
	s.lock()
	defer s.unlock()
	if !s.ctrl.HasSelection() {
		return 0, 0, false
	}
	var err error
	if start, err = s.ctrl.OffsetOf(s.ctrl.Start()); err != nil {
		return 0, 0, false
	}
	if end, err = s.ctrl.OffsetOf(s.ctrl.End()); err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// Rects returns the visual rectangles of the selection, computed from
// the saved selection while unfocused.
func (s *Surface) Rects() []dom.Rect {
	s.lock()
	defer s.unlock()
	return s.ctrl.Rects()
}

// CurrentStyle returns the style newly typed text would take.
func (s *Surface) CurrentStyle() style.Record {
	s.lock()
	defer s.unlock()
	return s.ctrl.CurrentStyle()
}

// ============================================================================
// Document
// ============================================================================

// ID returns the session identifier carried by published events.
func (s *Surface) ID() string { return s.id }

// Root returns the document root. Callers must not mutate it.
func (s *Surface) Root() *dom.Node {
	s.lock()
	defer s.unlock()
	return s.root
}

// Text returns the plain text of the document, paragraphs separated by
// newlines.
func (s *Surface) Text() string {
	s.lock()
	defer s.unlock()
	return content.Text(s.root)
}

// Document exports the document.
func (s *Surface) Document() content.Document {
	s.lock()
	defer s.unlock()
	return content.Export(s.root)
}

// SetDocument replaces the document. The selection is cleared and a full
// layout is requested.
func (s *Surface) SetDocument(d content.Document) error {
	s.lock()
	defer s.unlock()
	if s.closed {
		return ErrClosed
	}
	root, err := content.Import(d)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	s.inCommand = true
	before := s.ctrl.CurrentStyle()
	s.root = root
	s.ctrl.SetRoot(root)
	s.inCommand = false

	s.ledger.Clear()
	s.emit(s.layoutEvent(true))
	if after := s.ctrl.CurrentStyle(); !after.Equal(before) {
		s.emit(s.styleEvent(after))
	}
	return nil
}

// ============================================================================
// Subscriptions
// ============================================================================

// Bus returns the bus events are published on.
func (s *Surface) Bus() *event.Bus { return s.bus }

// OnChange calls fn for every change event of this surface.
func (s *Surface) OnChange(fn func(events.Change)) (*event.Subscription, error) {
	return subscribe(s, events.TopicChange, func(p events.Change) string { return p.SessionID }, fn)
}

// OnStyleChange calls fn for every style change of this surface.
func (s *Surface) OnStyleChange(fn func(events.StyleChange)) (*event.Subscription, error) {
	return subscribe(s, events.TopicStyleChange, func(p events.StyleChange) string { return p.SessionID }, fn)
}

// OnNeedsLayout calls fn for every layout request of this surface.
func (s *Surface) OnNeedsLayout(fn func(events.NeedsLayout)) (*event.Subscription, error) {
	return subscribe(s, events.TopicNeedsLayout, func(p events.NeedsLayout) string { return p.SessionID }, fn)
}

// subscribe registers fn for payloads of type T published by s. Events of
// other surfaces sharing the bus are skipped.
func subscribe[T any](s *Surface, t topic.Topic, session func(T) string, fn func(T)) (*event.Subscription, error) {
	return event.SubscribeTyped(s.bus, t, func(_ context.Context, ev event.Event[T]) error {
		if session(ev.Payload) == s.id {
			fn(ev.Payload)
		}
		return nil
	})
}

// ============================================================================
// Lifecycle
// ============================================================================

// Close delivers a pending change, detaches from the host selection and
// closes the bus if the surface created it. Close is idempotent.
func (s *Surface) Close() error {
	s.lock()
	if s.closed {
		s.unlock()
		return nil
	}
	s.closed = true
	s.ctrl.Close()
	s.unlock()

	s.notifier.Dispose()
	if s.ownBus {
		s.bus.Close()
	}
	return nil
}
