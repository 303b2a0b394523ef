package selection

import (
	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/style"
	"github.com/dshills/inkwell/internal/engine/tracking"
	"github.com/dshills/inkwell/internal/engine/traverse"
)

// Direction is the orientation of a range selection.
type Direction int

const (
	// DirectionNone is reported for a collapsed or empty selection.
	DirectionNone Direction = iota
	// DirectionForward means the anchor precedes the focus.
	DirectionForward
	// DirectionBackward means the focus precedes the anchor.
	DirectionBackward
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionBackward:
		return "backward"
	default:
		return "none"
	}
}

// StyleListener receives the inferred current style whenever it changes.
type StyleListener func(style.Record)

// Controller owns the logical selection over a document tree and
// implements the editing commands.
//
// Controller is not safe for concurrent use. The host drives it from a
// single goroutine, as it would a native editing surface.
type Controller struct {
	root     *dom.Node
	sel      dom.Selection
	ledger   *tracking.Ledger
	limits   traverse.Limits
	defaults style.Map
	measurer dom.Measurer

	saved    *span
	mutating bool

	current  style.Record
	pending  style.Map
	listener StyleListener
	cancel   func()
}

// span is a saved pair of boundary points.
type span struct {
	anchor, focus dom.Position
}

// Option configures a Controller.
type Option func(*Controller)

// WithLimits sets the guard limits used by multi-leaf commands.
func WithLimits(l traverse.Limits) Option {
	return func(c *Controller) {
		c.limits = l
	}
}

// WithDefaults sets the default styles underlying every inferred style.
func WithDefaults(m style.Map) Option {
	return func(c *Controller) {
		c.defaults = m.Clone()
	}
}

// WithStyleListener registers fn to receive style changes.
func WithStyleListener(fn StyleListener) Option {
	return func(c *Controller) {
		c.listener = fn
	}
}

// WithMeasurer sets the measurer used to compute rectangles for a saved
// selection.
func WithMeasurer(m dom.Measurer) Option {
	return func(c *Controller) {
		c.measurer = m
	}
}

// New creates a controller for root, mirroring sel. A nil ledger gets a
// fresh one.
func New(root *dom.Node, sel dom.Selection, ledger *tracking.Ledger, opts ...Option) *Controller {
	if ledger == nil {
		ledger = tracking.NewLedger()
	}
	c := &Controller{
		root:     root,
		sel:      sel,
		ledger:   ledger,
		limits:   traverse.DefaultLimits(),
		defaults: style.Defaults(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.current = c.computeStyle()
	c.cancel = sel.OnChange(c.selectionChanged)
	return c
}

// Close stops observing the host selection.
func (c *Controller) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Root returns the document root.
func (c *Controller) Root() *dom.Node { return c.root }

// SetRoot replaces the document root and clears the selection.
func (c *Controller) SetRoot(root *dom.Node) {
	c.root = root
	c.saved = nil
	c.pending = nil
	c.mutating = true
	c.sel.RemoveAllRanges()
	c.mutating = false
	c.refreshStyle()
}

// Ledger returns the mutation ledger commands record into.
func (c *Controller) Ledger() *tracking.Ledger { return c.ledger }

// Limits returns the guard limits.
func (c *Controller) Limits() traverse.Limits { return c.limits }

// selectionChanged runs when the host moves the selection.
func (c *Controller) selectionChanged() {
	if c.mutating || c.saved != nil {
		return
	}
	c.pending = nil
	c.refreshStyle()
}

// Anchor returns the anchor, preferring a saved selection.
func (c *Controller) Anchor() dom.Position {
	if c.saved != nil {
		return c.saved.anchor
	}
	return c.sel.Anchor()
}

// Focus returns the focus, preferring a saved selection.
func (c *Controller) Focus() dom.Position {
	if c.saved != nil {
		return c.saved.focus
	}
	return c.sel.Focus()
}

// AnchorNode returns the anchor node.
func (c *Controller) AnchorNode() *dom.Node { return c.Anchor().Node }

// AnchorOffset returns the anchor offset.
func (c *Controller) AnchorOffset() int { return c.Anchor().Offset }

// FocusNode returns the focus node.
func (c *Controller) FocusNode() *dom.Node { return c.Focus().Node }

// FocusOffset returns the focus offset.
func (c *Controller) FocusOffset() int { return c.Focus().Offset }

// HasSelection reports whether there is a selection at all.
func (c *Controller) HasSelection() bool {
	if c.saved != nil {
		return !c.saved.focus.IsZero()
	}
	return c.sel.RangeCount() > 0 && !c.sel.Focus().IsZero()
}

// IsCollapsed reports whether anchor and focus coincide.
func (c *Controller) IsCollapsed() bool {
	return c.Anchor() == c.Focus()
}

// Direction reports the orientation of the selection.
func (c *Controller) Direction() Direction {
	a, f := c.Anchor(), c.Focus()
	if a.IsZero() || f.IsZero() || a == f {
		return DirectionNone
	}
	switch dom.ComparePositions(a, f) {
	case -1:
		return DirectionForward
	case 1:
		return DirectionBackward
	}
	return DirectionNone
}

// Start returns the earlier of anchor and focus.
func (c *Controller) Start() dom.Position {
	if c.Direction() == DirectionBackward {
		return c.Focus()
	}
	return c.Anchor()
}

// End returns the later of anchor and focus.
func (c *Controller) End() dom.Position {
	if c.Direction() == DirectionBackward {
		return c.Anchor()
	}
	return c.Focus()
}

// FocusInline returns the inline containing the focus.
func (c *Controller) FocusInline() *dom.Node { return content.InlineOf(c.FocusNode()) }

// AnchorInline returns the inline containing the anchor.
func (c *Controller) AnchorInline() *dom.Node { return content.InlineOf(c.AnchorNode()) }

// FocusParagraph returns the paragraph containing the focus.
func (c *Controller) FocusParagraph() *dom.Node { return content.ParagraphOf(c.FocusNode()) }

// AnchorParagraph returns the paragraph containing the anchor.
func (c *Controller) AnchorParagraph() *dom.Node { return content.ParagraphOf(c.AnchorNode()) }

// IsTextFocus reports whether the focus is on a text leaf.
func (c *Controller) IsTextFocus() bool { return content.IsText(c.FocusNode()) }

// IsTextAnchor reports whether the anchor is on a text leaf.
func (c *Controller) IsTextAnchor() bool { return content.IsText(c.AnchorNode()) }

// IsTextSame reports whether anchor and focus are on the same text leaf.
func (c *Controller) IsTextSame() bool {
	return c.IsTextFocus() && c.AnchorNode() == c.FocusNode()
}

// IsLineBreakFocus reports whether the focus is on a line break.
func (c *Controller) IsLineBreakFocus() bool { return content.IsLineBreak(c.FocusNode()) }

// IsInlineFocus reports whether the focus is on an inline element.
func (c *Controller) IsInlineFocus() bool { return content.IsInline(c.FocusNode()) }

// IsParagraphFocus reports whether the focus is on a paragraph element.
func (c *Controller) IsParagraphFocus() bool { return content.IsParagraph(c.FocusNode()) }

// IsRootFocus reports whether the focus is on the root element.
func (c *Controller) IsRootFocus() bool { return content.IsRoot(c.FocusNode()) }

// IsMultiInline reports whether anchor and focus are in different inlines.
func (c *Controller) IsMultiInline() bool {
	return c.AnchorInline() != c.FocusInline()
}

// IsMultiParagraph reports whether anchor and focus are in different
// paragraphs.
func (c *Controller) IsMultiParagraph() bool {
	return c.AnchorParagraph() != c.FocusParagraph()
}

// IsInlineStart reports whether the focus is at the start of its inline.
func (c *Controller) IsInlineStart() bool {
	f := c.Focus()
	return content.IsInlineStart(f.Node, f.Offset)
}

// IsInlineEnd reports whether the focus is at the end of its inline.
func (c *Controller) IsInlineEnd() bool {
	f := c.Focus()
	return content.IsInlineEnd(f.Node, f.Offset)
}

// IsParagraphStart reports whether the focus is at the start of its
// paragraph.
func (c *Controller) IsParagraphStart() bool {
	f := c.Focus()
	return content.IsParagraphStart(f.Node, f.Offset)
}

// IsParagraphEnd reports whether the focus is at the end of its paragraph.
func (c *Controller) IsParagraphEnd() bool {
	f := c.Focus()
	return content.IsParagraphEnd(f.Node, f.Offset)
}

// Rects returns the visual rectangles of the selection. While a saved
// selection is held they are computed from it with the configured
// measurer.
func (c *Controller) Rects() []dom.Rect {
	if c.saved == nil {
		return c.sel.Rects()
	}
	if c.measurer == nil {
		return nil
	}
	return c.measurer.Rects(c.Start(), c.End())
}

// SaveSelection snapshots the host selection so commands can keep working
// against it while the surface is unfocused. A second call keeps the first
// snapshot.
func (c *Controller) SaveSelection() {
	if c.saved != nil {
		return
	}
	c.saved = &span{anchor: c.sel.Anchor(), focus: c.sel.Focus()}
}

// HasSavedSelection reports whether a saved selection is held.
func (c *Controller) HasSavedSelection() bool { return c.saved != nil }

// RestoreSelection reapplies a saved selection to the host and drops it.
func (c *Controller) RestoreSelection() error {
	if c.saved == nil {
		return nil
	}
	s := c.saved
	c.saved = nil
	if s.anchor.IsZero() && s.focus.IsZero() {
		return nil
	}
	if err := c.setSelection(s.anchor, s.focus); err != nil {
		return err
	}
	c.refreshStyle()
	return nil
}

// Select moves the selection. Both nodes must belong to the document.
func (c *Controller) Select(anchor, focus dom.Position) error {
	if err := c.setSelection(anchor, focus); err != nil {
		return err
	}
	c.pending = nil
	c.refreshStyle()
	return nil
}

// Collapse moves a collapsed caret to p.
func (c *Controller) Collapse(p dom.Position) error {
	return c.Select(p, p)
}

// SelectAll selects from the first to the last leaf of the document.
func (c *Controller) SelectAll() error {
	first := c.root.FirstChild()
	last := c.root.LastChild()
	if first == nil {
		return &SelectionError{Op: "select all", Node: c.root, Err: ErrUnresolvableSelection}
	}
	end := content.LastLeaf(last)
	return c.Select(
		dom.Position{Node: content.FirstLeaf(first), Offset: 0},
		dom.Position{Node: end, Offset: content.EndOffset(end)},
	)
}

// SelectRange selects between two document offsets, counting one position
// for each paragraph boundary.
func (c *Controller) SelectRange(start, end int) error {
	a, err := c.PositionAt(start)
	if err != nil {
		return err
	}
	f, err := c.PositionAt(end)
	if err != nil {
		return err
	}
	return c.Select(a, f)
}

// PositionAt maps a document offset to a leaf position. An offset on an
// inline boundary resolves to the end of the earlier inline.
func (c *Controller) PositionAt(offset int) (dom.Position, error) {
	if offset < 0 {
		return dom.Position{}, &SelectionError{Op: "position at", Offset: offset, Err: ErrOffsetOutOfRange}
	}
	remaining := offset
	for p := c.root.FirstChild(); p != nil; p = p.NextSibling() {
		for in := p.FirstChild(); in != nil; in = in.NextSibling() {
			l := content.Length(in)
			if remaining <= l {
				return dom.Position{Node: content.Leaf(in), Offset: remaining}, nil
			}
			remaining -= l
		}
		remaining--
	}
	return dom.Position{}, &SelectionError{Op: "position at", Offset: offset, Err: ErrOffsetOutOfRange}
}

// OffsetOf is the inverse of PositionAt for leaf positions.
func (c *Controller) OffsetOf(pos dom.Position) (int, error) {
	offset := 0
	for p := c.root.FirstChild(); p != nil; p = p.NextSibling() {
		for in := p.FirstChild(); in != nil; in = in.NextSibling() {
			if content.Leaf(in) == pos.Node {
				return offset + pos.Offset, nil
			}
			offset += content.Length(in)
		}
		offset++
	}
	return 0, &SelectionError{Op: "offset of", Node: pos.Node, Offset: pos.Offset, Err: ErrDetachedNode}
}

// Normalize resolves both ends of the selection onto leaves. Element
// positions map to the first leaf at or after them, or the end of the
// last leaf before them.
func (c *Controller) Normalize() error {
	if !c.HasSelection() {
		return nil
	}
	a, err := c.resolve(c.Anchor())
	if err != nil {
		return err
	}
	f, err := c.resolve(c.Focus())
	if err != nil {
		return err
	}
	if a == c.Anchor() && f == c.Focus() {
		return nil
	}
	c.mutating = true
	defer func() { c.mutating = false }()
	return c.setSelection(a, f)
}

func (c *Controller) resolve(p dom.Position) (dom.Position, error) {
	n := p.Node
	if n == nil || !c.root.Contains(n) {
		return p, &SelectionError{Op: "resolve", Node: n, Offset: p.Offset, Err: ErrDetachedNode}
	}
	switch {
	case content.IsText(n):
		off := min(max(p.Offset, 0), len(n.Data()))
		for off > 0 && !content.ValidOffset(n, off) {
			off--
		}
		return dom.Position{Node: n, Offset: off}, nil
	case content.IsLineBreak(n):
		return dom.Position{Node: n}, nil
	case content.IsInline(n):
		leaf := content.Leaf(n)
		if leaf == nil {
			return p, unresolvable("resolve", p)
		}
		if p.Offset == 0 {
			return dom.Position{Node: leaf}, nil
		}
		return dom.Position{Node: leaf, Offset: content.EndOffset(leaf)}, nil
	case content.IsParagraph(n), content.IsRoot(n):
		if p.Offset < n.ChildCount() {
			if leaf := firstLeafUnder(n.ChildAt(max(p.Offset, 0))); leaf != nil {
				return dom.Position{Node: leaf}, nil
			}
		}
		if leaf := lastLeafUnder(n.LastChild()); leaf != nil {
			return dom.Position{Node: leaf, Offset: content.EndOffset(leaf)}, nil
		}
	}
	return p, unresolvable("resolve", p)
}

func firstLeafUnder(n *dom.Node) *dom.Node {
	for n != nil && !content.IsLeaf(n) {
		n = n.FirstChild()
	}
	return n
}

func lastLeafUnder(n *dom.Node) *dom.Node {
	for n != nil && !content.IsLeaf(n) {
		n = n.LastChild()
	}
	return n
}

// setSelection writes both ends to the saved selection if one is held, or
// to the host selection otherwise.
func (c *Controller) setSelection(anchor, focus dom.Position) error {
	for _, p := range []dom.Position{anchor, focus} {
		if p.Node == nil || !c.root.Contains(p.Node) {
			return &SelectionError{Op: "select", Node: p.Node, Offset: p.Offset, Err: ErrDetachedNode}
		}
	}
	if c.saved != nil {
		c.saved.anchor, c.saved.focus = anchor, focus
		return nil
	}
	c.sel.SetBaseAndExtent(anchor, focus)
	return nil
}

func (c *Controller) collapse(n *dom.Node, offset int) error {
	p := dom.Position{Node: n, Offset: offset}
	return c.setSelection(p, p)
}

// selectLeaves selects from the start of first to the end of last, keeping
// the current direction.
func (c *Controller) selectLeaves(first, last *dom.Node, dir Direction) error {
	a := dom.Position{Node: first}
	f := dom.Position{Node: last, Offset: content.EndOffset(last)}
	if dir == DirectionBackward {
		a, f = f, a
	}
	return c.setSelection(a, f)
}

// CurrentStyle returns the style newly typed text would take.
func (c *Controller) CurrentStyle() style.Record { return c.current }

// PendingStyle returns the inline style queued for the next insertion at a
// collapsed caret, or nil.
func (c *Controller) PendingStyle() style.Map {
	if c.pending == nil {
		return nil
	}
	return c.pending.Clone()
}

func (c *Controller) computeStyle() style.Record {
	layers := []*dom.Style{c.root.Style()}
	if focus := c.Focus(); !focus.IsZero() {
		if p, err := c.resolve(focus); err == nil {
			focus = p
		}
		if paragraph := content.ParagraphOf(focus.Node); paragraph != nil {
			layers = append(layers, paragraph.Style())
		}
		if inline := content.InlineOf(focus.Node); inline != nil {
			layers = append(layers, inline.Style())
		}
	}
	r := style.Compute(c.defaults, layers...)
	if len(c.pending) > 0 {
		r = r.With(c.pending)
	}
	return r
}

// refreshStyle recomputes the current style and notifies the listener if
// it changed. It reports whether it changed.
func (c *Controller) refreshStyle() bool {
	r := c.computeStyle()
	if r.Equal(c.current) {
		return false
	}
	c.current = r
	if c.listener != nil {
		c.listener(r)
	}
	return true
}

// begin prepares a command: it suppresses selection observation and
// resolves the selection onto leaves. The returned function ends the
// command and refreshes the inferred style.
func (c *Controller) begin(op string) (func(), error) {
	c.mutating = true
	end := func() {
		c.mutating = false
		c.refreshStyle()
	}
	if !c.HasSelection() {
		end()
		return nil, &SelectionError{Op: op, Err: ErrUnresolvableSelection}
	}
	if err := c.Normalize(); err != nil {
		end()
		return nil, err
	}
	c.mutating = true
	return end, nil
}
