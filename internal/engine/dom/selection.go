package dom

// Position is a boundary point: a node and an offset into it. For text
// nodes the offset is a byte offset into the data; for elements it is a
// child index.
type Position struct {
	Node   *Node
	Offset int
}

// IsZero reports whether the position has no node.
func (p Position) IsZero() bool { return p.Node == nil }

// ComparePositions orders two boundary points in document order.
// It returns -1, 0 or 1.
func ComparePositions(a, b Position) int {
	if a.Node == b.Node {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	}
	if a.Node.Contains(b.Node) {
		if a.Offset <= childIndexToward(a.Node, b.Node) {
			return -1
		}
		return 1
	}
	if b.Node.Contains(a.Node) {
		return -ComparePositions(b, a)
	}
	return a.Node.Compare(b.Node)
}

// childIndexToward returns the index of the child of ancestor that
// contains descendant.
func childIndexToward(ancestor, descendant *Node) int {
	c := descendant
	for c.parent != ancestor {
		c = c.parent
	}
	return c.Index()
}

// Rect is a visual rectangle of a selected range.
type Rect struct {
	X, Y, Width, Height float64
}

// Measurer computes visual rectangles covering a range. Hosts that render
// provide one; headless hosts usually do not.
type Measurer interface {
	Rects(start, end Position) []Rect
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(start, end Position) []Rect

// Rects calls f.
func (f MeasurerFunc) Rects(start, end Position) []Rect { return f(start, end) }

// Selection is the host's native selection primitive.
type Selection interface {
	// Anchor returns where the selection started.
	Anchor() Position

	// Focus returns where the selection ends (where typing occurs).
	Focus() Position

	// IsCollapsed reports whether anchor and focus coincide.
	IsCollapsed() bool

	// RangeCount returns 0 when nothing is selected and 1 otherwise.
	RangeCount() int

	// SetBaseAndExtent moves both ends of the selection.
	SetBaseAndExtent(anchor, focus Position)

	// Collapse moves anchor and focus to p.
	Collapse(p Position)

	// RemoveAllRanges clears the selection.
	RemoveAllRanges()

	// Rects returns the visual rectangles of the current range.
	Rects() []Rect

	// OnChange registers fn to be called whenever the selection moves and
	// returns a function that unregisters it.
	OnChange(fn func()) (cancel func())
}

// MemorySelection is an in-memory Selection. Listeners run synchronously
// on the goroutine that moved the selection.
type MemorySelection struct {
	anchor    Position
	focus     Position
	hasRange  bool
	measurer  Measurer
	listeners map[uint64]func()
	order     []uint64
	nextID    uint64
}

// NewMemorySelection creates an empty in-memory selection. m may be nil.
func NewMemorySelection(m Measurer) *MemorySelection {
	return &MemorySelection{
		measurer:  m,
		listeners: make(map[uint64]func()),
	}
}

// Anchor implements Selection.
func (s *MemorySelection) Anchor() Position { return s.anchor }

// Focus implements Selection.
func (s *MemorySelection) Focus() Position { return s.focus }

// IsCollapsed implements Selection.
func (s *MemorySelection) IsCollapsed() bool {
	return s.anchor == s.focus
}

// RangeCount implements Selection.
func (s *MemorySelection) RangeCount() int {
	if s.hasRange {
		return 1
	}
	return 0
}

// SetBaseAndExtent implements Selection.
func (s *MemorySelection) SetBaseAndExtent(anchor, focus Position) {
	if s.hasRange && s.anchor == anchor && s.focus == focus {
		return
	}
	s.anchor, s.focus = anchor, focus
	s.hasRange = !anchor.IsZero() && !focus.IsZero()
	s.changed()
}

// Collapse implements Selection.
func (s *MemorySelection) Collapse(p Position) {
	s.SetBaseAndExtent(p, p)
}

// RemoveAllRanges implements Selection.
func (s *MemorySelection) RemoveAllRanges() {
	if !s.hasRange {
		return
	}
	s.anchor, s.focus = Position{}, Position{}
	s.hasRange = false
	s.changed()
}

// Rects implements Selection.
func (s *MemorySelection) Rects() []Rect {
	if !s.hasRange || s.measurer == nil {
		return nil
	}
	start, end := s.anchor, s.focus
	if ComparePositions(start, end) > 0 {
		start, end = end, start
	}
	return s.measurer.Rects(start, end)
}

// OnChange implements Selection.
func (s *MemorySelection) OnChange(fn func()) func() {
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.order = append(s.order, id)
	return func() {
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *MemorySelection) changed() {
	ids := make([]uint64, len(s.order))
	copy(ids, s.order)
	for _, id := range ids {
		if fn, ok := s.listeners[id]; ok {
			fn()
		}
	}
}
