package selection

import (
	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/style"
	"github.com/dshills/inkwell/internal/engine/traverse"
)

// ApplyStyles applies styles to the selection. Root properties go on the
// root and paragraph properties on every paragraph touched by the range.
// Inline properties restyle the selected text, splitting inlines at the
// range ends so the selection afterwards covers exactly the restyled
// runs. At a collapsed caret on text they are queued for the next
// insertion. Without any selection the whole document is restyled.
func (c *Controller) ApplyStyles(styles style.Map) error {
	c.mutating = true
	defer func() {
		c.mutating = false
		c.refreshStyle()
	}()
	if style.Apply(c.root.Style(), styles, style.RootKeys()) {
		c.ledger.Update(c.root)
	}
	if !c.HasSelection() {
		return c.applyAll(styles)
	}
	if err := c.Normalize(); err != nil {
		return err
	}
	c.mutating = true

	start, end := c.Start(), c.End()
	first := content.ParagraphOf(start.Node)
	last := content.ParagraphOf(end.Node)
	for p := first; p != nil; p = p.NextSibling() {
		if style.Apply(p.Style(), styles, style.ParagraphKeys()) {
			c.ledger.Update(p)
		}
		if p == last {
			break
		}
	}

	inline := styles.Only(style.InlineKeys())
	if len(inline) == 0 {
		return nil
	}
	switch {
	case c.IsCollapsed():
		return c.applyCollapsed(start, inline)
	case start.Node == end.Node:
		return c.applySingle(start, end, inline)
	}
	return c.applyMulti(start, end, inline)
}

func (c *Controller) applyAll(styles style.Map) error {
	g := traverse.NewGuard("apply styles", c.limits)
	for p := c.root.FirstChild(); p != nil; p = p.NextSibling() {
		if style.Apply(p.Style(), styles, style.ParagraphKeys()) {
			c.ledger.Update(p)
		}
		for in := p.FirstChild(); in != nil; in = in.NextSibling() {
			if err := g.Step(); err != nil {
				return err
			}
			if style.Apply(in.Style(), styles, style.InlineKeys()) {
				c.ledger.Update(in)
			}
		}
	}
	return nil
}

func (c *Controller) applyCollapsed(caret dom.Position, styles style.Map) error {
	if content.IsLineBreak(caret.Node) {
		inline := content.InlineOf(caret.Node)
		if style.Apply(inline.Style(), styles, style.InlineKeys()) {
			c.ledger.Update(inline)
		}
		return nil
	}
	if c.pending == nil {
		c.pending = style.Map{}
	}
	for k, v := range styles {
		c.pending[k] = v
	}
	return nil
}

func (c *Controller) applySingle(start, end dom.Position, styles style.Map) error {
	c.pending = nil
	dir := c.Direction()
	leaf := start.Node
	inline := content.InlineOf(leaf)
	if !content.IsText(leaf) || (start.Offset == 0 && end.Offset == len(leaf.Data())) {
		if style.Apply(inline.Style(), styles, style.InlineKeys()) {
			c.ledger.Update(inline)
		}
		return nil
	}
	target := inline
	if start.Offset > 0 {
		tail, err := content.SplitInline(inline, start.Offset)
		if err != nil {
			return err
		}
		c.ledger.Update(inline)
		c.ledger.Add(tail)
		target = tail
	}
	if n := end.Offset - start.Offset; n < content.Length(target) {
		after, err := content.SplitInline(target, n)
		if err != nil {
			return err
		}
		c.ledger.Update(target)
		c.ledger.Add(after)
	}
	if style.Apply(target.Style(), styles, style.InlineKeys()) {
		c.ledger.Update(target)
	}
	l := content.Leaf(target)
	return c.selectLeaves(l, l, dir)
}

func (c *Controller) applyMulti(start, end dom.Position, styles style.Map) error {
	c.pending = nil
	dir := c.Direction()
	w := traverse.New(c.root, traverse.WithLimits(c.limits))
	leaves, err := w.Collect(start.Node, end.Node)
	if err != nil {
		return err
	}
	g := traverse.NewGuard("apply styles", c.limits)
	var first, last *dom.Node
	for i, leaf := range leaves {
		if err := g.Step(); err != nil {
			return err
		}
		inline := content.InlineOf(leaf)
		target := inline
		if content.IsText(leaf) {
			switch i {
			case 0:
				if start.Offset == len(leaf.Data()) {
					continue
				}
				if start.Offset > 0 {
					tail, err := content.SplitInline(inline, start.Offset)
					if err != nil {
						return err
					}
					c.ledger.Update(inline)
					c.ledger.Add(tail)
					target = tail
				}
			case len(leaves) - 1:
				if end.Offset == 0 {
					continue
				}
				if end.Offset < len(leaf.Data()) {
					after, err := content.SplitInline(inline, end.Offset)
					if err != nil {
						return err
					}
					c.ledger.Update(inline)
					c.ledger.Add(after)
				}
			}
		}
		if style.Apply(target.Style(), styles, style.InlineKeys()) {
			c.ledger.Update(target)
		}
		if first == nil {
			first = content.Leaf(target)
		}
		last = content.Leaf(target)
	}
	if first == nil {
		return nil
	}
	return c.selectLeaves(first, last, dir)
}
