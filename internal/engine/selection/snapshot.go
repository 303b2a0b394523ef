package selection

import (
	"github.com/dshills/inkwell/internal/engine/dom"
)

// Point is a boundary point addressed by its path from the root, so it
// survives replacing the tree with a structurally identical copy.
type Point struct {
	Path   dom.Path
	Offset int
}

// Snapshot records the selection by path.
type Snapshot struct {
	Anchor, Focus Point
	Saved         bool
	Empty         bool
}

// Snapshot captures the current selection.
func (c *Controller) Snapshot() Snapshot {
	if !c.HasSelection() {
		return Snapshot{Empty: true}
	}
	a, f := c.Anchor(), c.Focus()
	ap, aok := dom.PathOf(c.root, a.Node)
	fp, fok := dom.PathOf(c.root, f.Node)
	if !aok || !fok {
		return Snapshot{Empty: true, Saved: c.saved != nil}
	}
	return Snapshot{
		Anchor: Point{Path: ap, Offset: a.Offset},
		Focus:  Point{Path: fp, Offset: f.Offset},
		Saved:  c.saved != nil,
	}
}

// RestoreSnapshot reapplies s to the current tree. Selection observation
// is suppressed, and the inferred style is refreshed afterwards.
func (c *Controller) RestoreSnapshot(s Snapshot) error {
	c.mutating = true
	defer func() {
		c.mutating = false
		c.refreshStyle()
	}()
	if s.Saved && c.saved == nil {
		c.saved = &span{}
	}
	if !s.Saved {
		c.saved = nil
	}
	if s.Empty {
		if c.saved != nil {
			c.saved.anchor, c.saved.focus = dom.Position{}, dom.Position{}
		} else {
			c.sel.RemoveAllRanges()
		}
		return nil
	}
	a, err := s.Anchor.Path.Resolve(c.root)
	if err != nil {
		return err
	}
	f, err := s.Focus.Path.Resolve(c.root)
	if err != nil {
		return err
	}
	return c.setSelection(
		dom.Position{Node: a, Offset: s.Anchor.Offset},
		dom.Position{Node: f, Offset: s.Focus.Offset},
	)
}
