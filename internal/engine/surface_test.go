package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/paste"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/engine/style"
	"github.com/dshills/inkwell/internal/engine/traverse"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/event/events"
)

// ============================================================================
// Setup Helpers
// ============================================================================

// recorder collects the events one surface publishes.
type recorder struct {
	mu      sync.Mutex
	layouts []events.NeedsLayout
	styles  []events.StyleChange
	changes chan events.Change
}

func record(t *testing.T, s *Surface) *recorder {
	t.Helper()
	r := &recorder{changes: make(chan events.Change, 16)}
	if _, err := s.OnNeedsLayout(func(ev events.NeedsLayout) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.layouts = append(r.layouts, ev)
	}); err != nil {
		t.Fatalf("subscribe layout: %v", err)
	}
	if _, err := s.OnStyleChange(func(ev events.StyleChange) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.styles = append(r.styles, ev)
	}); err != nil {
		t.Fatalf("subscribe style: %v", err)
	}
	if _, err := s.OnChange(func(ev events.Change) { r.changes <- ev }); err != nil {
		t.Fatalf("subscribe change: %v", err)
	}
	return r
}

func (r *recorder) layoutCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.layouts)
}

func (r *recorder) lastLayout() events.NeedsLayout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layouts[len(r.layouts)-1]
}

func (r *recorder) styleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.styles)
}

func (r *recorder) changeCount() int {
	return len(r.changes)
}

func newSurface(t *testing.T, opts ...Option) *Surface {
	t.Helper()
	s, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newDocSurface(t *testing.T, paragraphs ...string) (*Surface, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	s := newSurface(t,
		WithDocument(content.NewDocument(paragraphs...)),
		WithClock(clock),
		WithChangeDelay(500*time.Millisecond),
		WithValidation(true),
	)
	return s, clock
}

func input(t *testing.T, s *Surface, typ InputType, data string) Result {
	t.Helper()
	res, err := s.HandleInput(InputEvent{Type: typ, Data: data})
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", typ, err)
	}
	return res
}

func caret(t *testing.T, s *Surface, offset int) {
	t.Helper()
	if err := s.SelectRange(offset, offset); err != nil {
		t.Fatalf("SelectRange(%d): %v", offset, err)
	}
}

// ============================================================================
// Construction
// ============================================================================

func TestNewEmpty(t *testing.T) {
	s := newSurface(t)
	if s.Text() != "" {
		t.Errorf("expected empty text, got %q", s.Text())
	}
	if err := content.Validate(s.Root()); err != nil {
		t.Errorf("empty document invalid: %v", err)
	}
	if s.ID() == "" {
		t.Error("expected a session id")
	}
}

func TestNewWithDocument(t *testing.T) {
	s := newSurface(t, WithDocument(content.NewDocument("one", "two")), WithSessionID("doc-1"))
	if s.Text() != "one\ntwo" {
		t.Errorf("expected %q, got %q", "one\ntwo", s.Text())
	}
	if s.ID() != "doc-1" {
		t.Errorf("expected session id doc-1, got %q", s.ID())
	}
}

func TestNewInvalidRoot(t *testing.T) {
	_, err := New(WithRoot(dom.NewElement("div")))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	if !errors.Is(err, content.ErrInvalidStructure) {
		t.Errorf("expected wrapped ErrInvalidStructure, got %v", err)
	}
}

// ============================================================================
// Input taxonomy
// ============================================================================

func TestParseInputType(t *testing.T) {
	for typ := InputInsertText; typ <= InputHistoryRedo; typ++ {
		if got := ParseInputType(typ.String()); got != typ {
			t.Errorf("ParseInputType(%q) = %v, want %v", typ.String(), got, typ)
		}
	}
	for _, name := range []string{"", "unknown", "insertLineBreak", "formatBold"} {
		if got := ParseInputType(name); got != InputUnknown {
			t.Errorf("ParseInputType(%q) = %v, want unknown", name, got)
		}
	}
	if InputType(200).String() != "unknown" {
		t.Errorf("out of range type should print unknown, got %q", InputType(200).String())
	}
	if !InputCompositionEnd.IsComposition() || InputInsertText.IsComposition() {
		t.Error("IsComposition misclassifies")
	}
	if !InputHistoryUndo.IsHistory() || InputDeleteByCut.IsHistory() {
		t.Error("IsHistory misclassifies")
	}
}

func TestUnknownInputPrevented(t *testing.T) {
	s, _ := newDocSurface(t, "abc")
	r := record(t, s)
	caret(t, s, 1)

	res := input(t, s, InputUnknown, "x")
	if !res.Prevented || res.Changed() {
		t.Errorf("unknown input should be a prevented no-op, got %+v", res)
	}
	if s.Text() != "abc" || r.layoutCount() != 0 {
		t.Errorf("unknown input changed the document: %q, %d layouts", s.Text(), r.layoutCount())
	}
}

func TestHistoryIgnored(t *testing.T) {
	s, _ := newDocSurface(t, "abc")
	caret(t, s, 1)
	for _, typ := range []InputType{InputHistoryUndo, InputHistoryRedo} {
		res := input(t, s, typ, "")
		if res.Prevented {
			t.Errorf("%s must not be prevented", typ)
		}
	}
	if s.Text() != "abc" {
		t.Errorf("history input changed the document: %q", s.Text())
	}
}

func TestCompositionPassThrough(t *testing.T) {
	s, _ := newDocSurface(t, "abc")
	r := record(t, s)
	caret(t, s, 3)

	res := input(t, s, InputInsertCompositionText, "ka")
	if res.Prevented {
		t.Error("composition text must not be prevented")
	}
	if r.layoutCount() != 0 {
		t.Errorf("composition text should not request layout, got %d", r.layoutCount())
	}

	res = input(t, s, InputCompositionEnd, "")
	if res.Prevented {
		t.Error("composition end must not be prevented")
	}
	if r.layoutCount() != 1 || !r.lastLayout().Full {
		t.Errorf("composition end should request a full layout, got %d layouts", r.layoutCount())
	}
}

// ============================================================================
// Commands
// ============================================================================

func TestInsertText(t *testing.T) {
	s, _ := newDocSurface(t, "Hello")
	r := record(t, s)
	caret(t, s, 5)

	res := input(t, s, InputInsertText, ", World!")
	if !res.Prevented || res.Updated == 0 {
		t.Errorf("expected a prevented update, got %+v", res)
	}
	if s.Text() != "Hello, World!" {
		t.Errorf("expected %q, got %q", "Hello, World!", s.Text())
	}
	if r.layoutCount() != 1 {
		t.Fatalf("expected 1 layout event, got %d", r.layoutCount())
	}
	ev := r.lastLayout()
	if ev.Full || len(ev.Updated) != res.Updated || ev.SessionID != s.ID() {
		t.Errorf("unexpected layout event %+v", ev)
	}
	start, end, ok := s.SelectionRange()
	if !ok || start != 13 || end != 13 {
		t.Errorf("expected caret at 13, got %d-%d (%v)", start, end, ok)
	}
}

func TestInsertTextReplacesRange(t *testing.T) {
	s, _ := newDocSurface(t, "Hello there")
	if err := s.SelectRange(6, 11); err != nil {
		t.Fatal(err)
	}
	input(t, s, InputInsertText, "Go")
	if s.Text() != "Hello Go" {
		t.Errorf("expected %q, got %q", "Hello Go", s.Text())
	}
}

func TestInsertParagraph(t *testing.T) {
	s, _ := newDocSurface(t, "ab")
	caret(t, s, 1)

	res := input(t, s, InputInsertParagraph, "")
	if res.Added == 0 {
		t.Errorf("expected an added paragraph, got %+v", res)
	}
	if s.Text() != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", s.Text())
	}

	if err := s.SelectRange(0, 3); err != nil {
		t.Fatal(err)
	}
	input(t, s, InputInsertParagraph, "")
	if s.Text() != "\n" {
		t.Errorf("expected two empty paragraphs, got %q", s.Text())
	}
}

func TestDeleteBackwardAndForward(t *testing.T) {
	s, _ := newDocSurface(t, "abc", "def")
	caret(t, s, 2)

	input(t, s, InputDeleteContentBackward, "")
	if s.Text() != "ac\ndef" {
		t.Errorf("after backspace expected %q, got %q", "ac\ndef", s.Text())
	}

	input(t, s, InputDeleteContentForward, "")
	if s.Text() != "a\ndef" {
		t.Errorf("after delete expected %q, got %q", "a\ndef", s.Text())
	}

	input(t, s, InputDeleteContentForward, "")
	if s.Text() != "adef" {
		t.Errorf("delete at paragraph end should merge, got %q", s.Text())
	}
}

func TestDeleteByCut(t *testing.T) {
	s, _ := newDocSurface(t, "abcd")
	if err := s.SelectRange(1, 3); err != nil {
		t.Fatal(err)
	}
	input(t, s, InputDeleteByCut, "")
	if s.Text() != "ad" {
		t.Errorf("expected %q, got %q", "ad", s.Text())
	}
	start, end, _ := s.SelectionRange()
	if start != 1 || end != 1 {
		t.Errorf("expected caret at 1, got %d-%d", start, end)
	}
}

func TestInsertDeleteInverse(t *testing.T) {
	s, _ := newDocSurface(t, "hello")
	caret(t, s, 2)
	text := "x\u00e9\u2603"
	input(t, s, InputInsertText, text)
	for range []rune(text) {
		input(t, s, InputDeleteContentBackward, "")
	}
	if s.Text() != "hello" {
		t.Errorf("expected %q, got %q", "hello", s.Text())
	}
}

// ============================================================================
// Paste
// ============================================================================

func TestPastePlainText(t *testing.T) {
	s, _ := newDocSurface(t, "ac")
	caret(t, s, 1)

	res, err := s.HandleInput(InputEvent{Type: InputInsertFromPaste, Data: "x\ny"})
	if err != nil {
		t.Fatalf("paste: %v", err)
	}
	if !res.Prevented || res.Added == 0 {
		t.Errorf("expected added paragraphs, got %+v", res)
	}
	if s.Text() != "a\nx\ny\nc" {
		t.Errorf("expected %q, got %q", "a\nx\ny\nc", s.Text())
	}
}

func TestPasteHTMLIntoEmptyDocument(t *testing.T) {
	s := newSurface(t, WithValidation(true))
	if err := s.SelectAll(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Paste(paste.Data{HTML: "<p><b>bold</b></p>"}); err != nil {
		t.Fatalf("paste: %v", err)
	}
	if s.Text() != "bold" {
		t.Fatalf("expected %q, got %q", "bold", s.Text())
	}
	d := s.Document()
	if got := d.Paragraphs[0].Inlines[0].Style[style.FontWeight]; got != "700" {
		t.Errorf("expected pasted bold weight 700, got %q", got)
	}
}

func TestPasteEmptyIsNoop(t *testing.T) {
	s, _ := newDocSurface(t, "abc")
	caret(t, s, 1)
	res, err := s.Paste(paste.Data{})
	if err != nil || !res.Prevented || res.Changed() {
		t.Errorf("empty paste should be a prevented no-op, got %+v, %v", res, err)
	}
}

// ============================================================================
// Styles
// ============================================================================

func TestApplyStylesPublishesStyleChange(t *testing.T) {
	s, _ := newDocSurface(t, "abc")
	if err := s.SelectRange(0, 3); err != nil {
		t.Fatal(err)
	}
	r := record(t, s)

	if err := s.ApplyStyles(style.Map{style.FontWeight: "700"}); err != nil {
		t.Fatalf("ApplyStyles: %v", err)
	}
	if got := s.CurrentStyle().Get(style.FontWeight); got != "700" {
		t.Errorf("expected current weight 700, got %q", got)
	}
	if r.styleCount() != 1 {
		t.Errorf("expected 1 style event, got %d", r.styleCount())
	}
	if r.layoutCount() != 1 {
		t.Errorf("expected 1 layout event, got %d", r.layoutCount())
	}
	if got := s.Document().Paragraphs[0].Inlines[0].Style[style.FontWeight]; got != "700" {
		t.Errorf("expected inline weight 700, got %q", got)
	}
}

func TestApplyRootStyleRequestsFullLayout(t *testing.T) {
	s, _ := newDocSurface(t, "abc")
	r := record(t, s)
	if err := s.ApplyStyles(style.Map{style.VerticalAlign: "middle"}); err != nil {
		t.Fatalf("ApplyStyles: %v", err)
	}
	if r.layoutCount() != 1 || !r.lastLayout().Full {
		t.Errorf("root restyle should request a full layout")
	}
}

// ============================================================================
// Atomicity
// ============================================================================

func TestFailedCommandRollsBack(t *testing.T) {
	s, _ := newDocSurface(t, "abc")
	r := record(t, s)

	res, err := s.HandleInput(InputEvent{Type: InputInsertText, Data: "x"})
	if err == nil {
		t.Fatal("expected an error without a selection")
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Op != "insertText" {
		t.Errorf("expected *CommandError for insertText, got %v", err)
	}
	if !errors.Is(err, selection.ErrUnresolvableSelection) {
		t.Errorf("expected ErrUnresolvableSelection, got %v", err)
	}
	if !res.Prevented || res.Changed() {
		t.Errorf("failed command should be prevented without changes, got %+v", res)
	}
	if s.Text() != "abc" || r.layoutCount() != 0 || r.changeCount() != 0 {
		t.Errorf("failed command leaked state: %q, %d layouts", s.Text(), r.layoutCount())
	}
}

func TestGuardTripRollsBack(t *testing.T) {
	s := newSurface(t,
		WithDocument(content.NewDocument("one", "two", "three")),
		WithClock(clockwork.NewFakeClock()),
		WithGuard(time.Hour, 1),
	)
	r := record(t, s)
	if err := s.SelectAll(); err != nil {
		t.Fatal(err)
	}

	_, err := s.HandleInput(InputEvent{Type: InputDeleteByCut})
	if !errors.Is(err, traverse.ErrGuardTripped) {
		t.Fatalf("expected ErrGuardTripped, got %v", err)
	}
	if s.Text() != "one\ntwo\nthree" {
		t.Errorf("expected document restored, got %q", s.Text())
	}
	if err := content.Validate(s.Root()); err != nil {
		t.Errorf("restored document invalid: %v", err)
	}
	start, end, ok := s.SelectionRange()
	if !ok || start != 0 || end != 13 {
		t.Errorf("expected selection restored to 0-13, got %d-%d (%v)", start, end, ok)
	}
	if r.layoutCount() != 0 {
		t.Errorf("aborted command published %d layouts", r.layoutCount())
	}
}

// explodingSelection panics once when armed.
type explodingSelection struct {
	*dom.MemorySelection
	armed bool
}

func (s *explodingSelection) SetBaseAndExtent(anchor, focus dom.Position) {
	if s.armed {
		s.armed = false
		panic("host selection failed")
	}
	s.MemorySelection.SetBaseAndExtent(anchor, focus)
}

func (s *explodingSelection) Collapse(p dom.Position) {
	s.SetBaseAndExtent(p, p)
}

func TestPanicRollsBack(t *testing.T) {
	sel := &explodingSelection{MemorySelection: dom.NewMemorySelection(nil)}
	s := newSurface(t,
		WithDocument(content.NewDocument("abc")),
		WithSelection(sel),
	)
	caret(t, s, 1)
	sel.armed = true

	_, err := s.HandleInput(InputEvent{Type: InputInsertText, Data: "x"})
	if !errors.Is(err, ErrCommandPanic) {
		t.Fatalf("expected ErrCommandPanic, got %v", err)
	}
	if s.Text() != "abc" {
		t.Errorf("expected document restored, got %q", s.Text())
	}

	input(t, s, InputInsertText, "x")
	if s.Text() != "axbc" {
		t.Errorf("surface unusable after panic: %q", s.Text())
	}
}

// ============================================================================
// Change notification
// ============================================================================

func TestChangeIsDebounced(t *testing.T) {
	s, clock := newDocSurface(t, "abc")
	r := record(t, s)
	caret(t, s, 3)

	input(t, s, InputInsertText, "d")
	input(t, s, InputInsertText, "e")
	if r.changeCount() != 0 {
		t.Fatalf("change delivered before the quiet period")
	}

	clock.Advance(500 * time.Millisecond)
	select {
	case ev := <-r.changes:
		if ev.SessionID != s.ID() {
			t.Errorf("change for wrong session %q", ev.SessionID)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced change not delivered")
	}
	if r.changeCount() != 0 {
		t.Errorf("expected one coalesced change, got more")
	}
}

func TestBlurFlushesChange(t *testing.T) {
	s, _ := newDocSurface(t, "abc")
	r := record(t, s)
	caret(t, s, 1)
	input(t, s, InputInsertText, "x")

	if err := s.Blur(); err != nil {
		t.Fatal(err)
	}
	if r.changeCount() != 1 {
		t.Errorf("expected change flushed on blur, got %d", r.changeCount())
	}
}

func TestCloseFlushesChange(t *testing.T) {
	s, err := New(WithDocument(content.NewDocument("abc")))
	if err != nil {
		t.Fatal(err)
	}
	r := record(t, s)
	caret(t, s, 1)
	input(t, s, InputInsertText, "x")

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if r.changeCount() != 1 {
		t.Errorf("expected change flushed on close, got %d", r.changeCount())
	}
	if _, err := s.HandleInput(InputEvent{Type: InputInsertText, Data: "y"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

// ============================================================================
// Focus and saved selection
// ============================================================================

func TestBlurKeepsSelection(t *testing.T) {
	sel := dom.NewMemorySelection(nil)
	s := newSurface(t, WithDocument(content.NewDocument("ab")), WithSelection(sel))
	if err := s.Focus(); err != nil {
		t.Fatal(err)
	}
	caret(t, s, 1)
	if err := s.Blur(); err != nil {
		t.Fatal(err)
	}
	if s.IsFocused() {
		t.Error("surface still focused after blur")
	}

	sel.RemoveAllRanges()
	input(t, s, InputInsertText, "x")
	if s.Text() != "axb" {
		t.Fatalf("expected insert at saved caret, got %q", s.Text())
	}

	if err := s.Focus(); err != nil {
		t.Fatal(err)
	}
	if sel.Focus().Offset != 2 || !content.IsText(sel.Focus().Node) {
		t.Errorf("expected host caret restored at offset 2, got %+v", sel.Focus())
	}
}

// ============================================================================
// Document replacement and sessions
// ============================================================================

func TestSetDocument(t *testing.T) {
	s, _ := newDocSurface(t, "abc")
	r := record(t, s)
	caret(t, s, 1)

	if err := s.SetDocument(content.NewDocument("new", "doc")); err != nil {
		t.Fatal(err)
	}
	if s.Text() != "new\ndoc" {
		t.Errorf("expected %q, got %q", "new\ndoc", s.Text())
	}
	if r.layoutCount() != 1 || !r.lastLayout().Full {
		t.Error("SetDocument should request a full layout")
	}
	if _, _, ok := s.SelectionRange(); ok {
		t.Error("SetDocument should clear the selection")
	}
}

func TestSharedBusFiltersSessions(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	a := newSurface(t, WithBus(bus), WithDocument(content.NewDocument("a")))
	b := newSurface(t, WithBus(bus), WithDocument(content.NewDocument("b")))
	ra := record(t, a)
	rb := record(t, b)

	caret(t, a, 1)
	input(t, a, InputInsertText, "x")
	if ra.layoutCount() != 1 || rb.layoutCount() != 0 {
		t.Errorf("expected layout only for a, got a=%d b=%d", ra.layoutCount(), rb.layoutCount())
	}
	if bus.Stats().Published == 0 {
		t.Error("expected events on the shared bus")
	}
}

func TestEventsCarrySessionCorrelation(t *testing.T) {
	s := newSurface(t, WithDocument(content.NewDocument("a")), WithSessionID("doc-7"))
	var meta []event.Metadata
	_, err := event.SubscribeTyped(s.Bus(), events.TopicNeedsLayout,
		func(_ context.Context, ev event.Event[events.NeedsLayout]) error {
			meta = append(meta, ev.Metadata)
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}

	caret(t, s, 1)
	input(t, s, InputInsertText, "b")
	if len(meta) != 1 {
		t.Fatalf("expected 1 layout event, got %d", len(meta))
	}
	if meta[0].CorrelationID != "doc-7" || meta[0].Source != eventSource || meta[0].ID == "" {
		t.Errorf("unexpected metadata %+v", meta[0])
	}
}
