package selection

import (
	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/traverse"
)

// RemoveOption configures RemoveSelected.
type RemoveOption func(*removeOptions)

type removeOptions struct {
	keepEmptyInline bool
}

// KeepEmptyInline keeps the inline at the start of a fully deleted range as
// an empty inline so its style carries over to the next insertion.
func KeepEmptyInline() RemoveOption {
	return func(o *removeOptions) {
		o.keepEmptyInline = true
	}
}

// RemoveBackwardText deletes the grapheme cluster before the caret.
func (c *Controller) RemoveBackwardText() error {
	done, err := c.begin("remove backward text")
	if err != nil {
		return err
	}
	defer done()
	return c.removeBackwardText()
}

// RemoveForwardText deletes the grapheme cluster after the caret.
func (c *Controller) RemoveForwardText() error {
	done, err := c.begin("remove forward text")
	if err != nil {
		return err
	}
	defer done()
	return c.removeForwardText()
}

// MergeBackwardParagraph joins the caret's paragraph onto the previous
// one.
func (c *Controller) MergeBackwardParagraph() error {
	done, err := c.begin("merge backward paragraph")
	if err != nil {
		return err
	}
	defer done()
	return c.mergeBackwardParagraph()
}

// MergeForwardParagraph joins the next paragraph onto the caret's.
func (c *Controller) MergeForwardParagraph() error {
	done, err := c.begin("merge forward paragraph")
	if err != nil {
		return err
	}
	defer done()
	return c.mergeForwardParagraph()
}

// RemoveBackwardParagraph deletes the empty paragraph under the caret and
// moves the caret to the end of the previous one.
func (c *Controller) RemoveBackwardParagraph() error {
	done, err := c.begin("remove backward paragraph")
	if err != nil {
		return err
	}
	defer done()
	return c.removeBackwardParagraph()
}

// RemoveForwardParagraph deletes the empty paragraph under the caret and
// moves the caret to the start of the next one. The last remaining
// paragraph is never removed.
func (c *Controller) RemoveForwardParagraph() error {
	done, err := c.begin("remove forward paragraph")
	if err != nil {
		return err
	}
	defer done()
	return c.removeForwardParagraph()
}

// RemoveSelected deletes the selected range and collapses the caret where
// it began.
func (c *Controller) RemoveSelected(opts ...RemoveOption) error {
	done, err := c.begin("remove selected")
	if err != nil {
		return err
	}
	defer done()
	var o removeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return c.removeSelected(o)
}

// DeleteBackward performs a backspace: it picks the removal that fits the
// caret position.
func (c *Controller) DeleteBackward() error {
	done, err := c.begin("delete backward")
	if err != nil {
		return err
	}
	defer done()
	if !c.IsCollapsed() {
		return c.removeSelected(removeOptions{})
	}
	switch {
	case c.IsTextFocus() && c.FocusOffset() == 0 && c.IsParagraphStart():
		return c.mergeBackwardParagraph()
	case c.IsTextFocus():
		return c.removeBackwardText()
	case c.IsLineBreakFocus(), c.IsInlineFocus():
		return c.removeBackwardParagraph()
	}
	return c.removeSelected(removeOptions{})
}

// DeleteForward performs a forward delete.
func (c *Controller) DeleteForward() error {
	done, err := c.begin("delete forward")
	if err != nil {
		return err
	}
	defer done()
	if !c.IsCollapsed() {
		return c.removeSelected(removeOptions{})
	}
	switch {
	case c.IsTextFocus() && c.IsParagraphEnd():
		return c.mergeForwardParagraph()
	case c.IsTextFocus():
		return c.removeForwardText()
	case c.IsLineBreakFocus(), c.IsInlineFocus():
		return c.removeForwardParagraph()
	}
	return c.removeSelected(removeOptions{})
}

func (c *Controller) removeBackwardText() error {
	focus := c.Focus()
	if !c.IsCollapsed() || !content.IsText(focus.Node) {
		return unresolvable("remove backward text", focus)
	}
	leaf, offset := focus.Node, focus.Offset
	inline := content.InlineOf(leaf)
	if offset == 0 {
		prev := inline.PrevSibling()
		if prev == nil {
			return c.mergeBackwardParagraph()
		}
		if content.IsEmptyInline(prev) {
			return c.dropInline(prev, dom.Position{Node: leaf, Offset: 0})
		}
		inline, leaf = prev, content.Leaf(prev)
		offset = content.EndOffset(leaf)
	}
	data := leaf.Data()
	n := clusterBefore(data, offset)
	if n == len(data) {
		return c.removeEmptied(inline)
	}
	leaf.SetData(data[:offset-n] + data[offset:])
	c.ledger.Update(inline)
	return c.collapse(leaf, offset-n)
}

func (c *Controller) removeForwardText() error {
	focus := c.Focus()
	if !c.IsCollapsed() || !content.IsText(focus.Node) {
		return unresolvable("remove forward text", focus)
	}
	leaf, offset := focus.Node, focus.Offset
	inline := content.InlineOf(leaf)
	caret := focus
	if offset == len(leaf.Data()) {
		next := inline.NextSibling()
		if next == nil {
			return c.mergeForwardParagraph()
		}
		if content.IsEmptyInline(next) {
			return c.dropInline(next, focus)
		}
		inline, leaf, offset = next, content.Leaf(next), 0
	}
	data := leaf.Data()
	n := clusterAfter(data, offset)
	if n == len(data) {
		return c.removeEmptied(inline)
	}
	leaf.SetData(data[:offset] + data[offset+n:])
	c.ledger.Update(inline)
	if caret.Node == leaf {
		return c.collapse(leaf, offset)
	}
	return c.collapse(caret.Node, caret.Offset)
}

// dropInline removes an inline that is not the only one in its paragraph
// and leaves the caret at caret.
func (c *Controller) dropInline(inline *dom.Node, caret dom.Position) error {
	p := inline.Parent()
	inline.Remove()
	c.ledger.Remove(inline)
	c.ledger.Update(p)
	return c.collapse(caret.Node, caret.Offset)
}

// removeEmptied removes an inline whose text has been deleted entirely.
// The only inline of a paragraph becomes a line break instead.
func (c *Controller) removeEmptied(inline *dom.Node) error {
	p := inline.Parent()
	if p.ChildCount() == 1 {
		br := content.CreateLineBreak()
		content.Leaf(inline).ReplaceWith(br)
		c.ledger.Update(inline)
		return c.collapse(br, 0)
	}
	prev, next := inline.PrevSibling(), inline.NextSibling()
	inline.Remove()
	c.ledger.Remove(inline)
	c.ledger.Update(p)
	if prev != nil {
		leaf := content.Leaf(prev)
		return c.collapse(leaf, content.EndOffset(leaf))
	}
	return c.collapse(content.Leaf(next), 0)
}

func (c *Controller) mergeBackwardParagraph() error {
	focus := c.Focus()
	p := content.ParagraphOf(focus.Node)
	if p == nil {
		return unresolvable("merge backward paragraph", focus)
	}
	prev := p.PrevSibling()
	if prev == nil {
		return nil
	}
	caret := focus
	if !content.IsEmptyParagraph(prev) || content.IsEmptyParagraph(p) {
		leaf := content.LastLeaf(prev)
		caret = dom.Position{Node: leaf, Offset: content.EndOffset(leaf)}
	}
	if _, err := content.MergeParagraphs(prev, p); err != nil {
		return err
	}
	c.ledger.Update(prev)
	c.ledger.Remove(p)
	return c.collapse(caret.Node, caret.Offset)
}

func (c *Controller) mergeForwardParagraph() error {
	focus := c.Focus()
	p := content.ParagraphOf(focus.Node)
	if p == nil {
		return unresolvable("merge forward paragraph", focus)
	}
	next := p.NextSibling()
	if next == nil {
		return nil
	}
	caret := focus
	if content.IsEmptyParagraph(p) && !content.IsEmptyParagraph(next) {
		caret = dom.Position{Node: content.FirstLeaf(next)}
	}
	if _, err := content.MergeParagraphs(p, next); err != nil {
		return err
	}
	c.ledger.Update(p)
	c.ledger.Remove(next)
	return c.collapse(caret.Node, caret.Offset)
}

func (c *Controller) removeBackwardParagraph() error {
	focus := c.Focus()
	if content.IsText(focus.Node) {
		return c.removeBackwardText()
	}
	p := content.ParagraphOf(focus.Node)
	inline := content.InlineOf(focus.Node)
	if p == nil || inline == nil {
		return unresolvable("remove backward paragraph", focus)
	}
	if p.ChildCount() > 1 {
		return c.removeEmptied(inline)
	}
	prev := p.PrevSibling()
	if prev == nil {
		return nil
	}
	p.Remove()
	c.ledger.Remove(p)
	leaf := content.LastLeaf(prev)
	return c.collapse(leaf, content.EndOffset(leaf))
}

func (c *Controller) removeForwardParagraph() error {
	focus := c.Focus()
	if content.IsText(focus.Node) {
		return c.removeForwardText()
	}
	p := content.ParagraphOf(focus.Node)
	inline := content.InlineOf(focus.Node)
	if p == nil || inline == nil {
		return unresolvable("remove forward paragraph", focus)
	}
	if p.ChildCount() > 1 {
		next := inline.NextSibling()
		if next == nil {
			return c.removeEmptied(inline)
		}
		c.ledger.Remove(inline)
		inline.Remove()
		c.ledger.Update(p)
		return c.collapse(content.Leaf(next), 0)
	}
	next := p.NextSibling()
	if next == nil || c.root.ChildCount() == 1 {
		return nil
	}
	p.Remove()
	c.ledger.Remove(p)
	return c.collapse(content.FirstLeaf(next), 0)
}

func (c *Controller) removeSelected(o removeOptions) error {
	if !c.HasSelection() {
		return &SelectionError{Op: "remove selected", Err: ErrUnresolvableSelection}
	}
	if c.IsCollapsed() {
		return nil
	}
	start, end := c.Start(), c.End()
	if start.Node == end.Node {
		return c.removeWithinLeaf(start, end, o)
	}
	return c.removeAcross(start, end, o)
}

func (c *Controller) removeWithinLeaf(start, end dom.Position, o removeOptions) error {
	leaf := start.Node
	if !content.IsText(leaf) {
		return c.collapse(leaf, 0)
	}
	inline := content.InlineOf(leaf)
	data := leaf.Data()
	if start.Offset == 0 && end.Offset == len(data) {
		if o.keepEmptyInline || inline.Parent().ChildCount() == 1 {
			br := content.CreateLineBreak()
			leaf.ReplaceWith(br)
			c.ledger.Update(inline)
			return c.collapse(br, 0)
		}
		return c.removeEmptied(inline)
	}
	leaf.SetData(data[:start.Offset] + data[end.Offset:])
	c.ledger.Update(inline)
	return c.collapse(leaf, start.Offset)
}

// removeAcross deletes a range whose ends are on different leaves. The
// end paragraph's remainder is merged into the start paragraph.
func (c *Controller) removeAcross(start, end dom.Position, o removeOptions) error {
	w := traverse.New(c.root, traverse.WithLimits(c.limits))
	leaves, err := w.Collect(start.Node, end.Node)
	if err != nil {
		return err
	}
	startLeaf, endLeaf := start.Node, end.Node
	startInline, endInline := content.InlineOf(startLeaf), content.InlineOf(endLeaf)
	startP, endP := content.ParagraphOf(startLeaf), content.ParagraphOf(endLeaf)
	prevInline := startInline.PrevSibling()

	startEmpty := !content.IsText(startLeaf) || start.Offset == 0
	if !startEmpty {
		startLeaf.SetData(startLeaf.Data()[:start.Offset])
		c.ledger.Update(startInline)
	}
	endEmpty := !content.IsText(endLeaf) || end.Offset == len(endLeaf.Data())
	if !endEmpty {
		endLeaf.SetData(endLeaf.Data()[end.Offset:])
		c.ledger.Update(endInline)
	}

	g := traverse.NewGuard("remove selection", c.limits)
	for _, leaf := range leaves[1 : len(leaves)-1] {
		if err := g.Step(); err != nil {
			return err
		}
		inline := content.InlineOf(leaf)
		p := inline.Parent()
		inline.Remove()
		c.ledger.Remove(inline)
		if p != startP && p != endP && !p.HasChildren() {
			p.Remove()
			c.ledger.Remove(p)
		}
	}

	var kept *dom.Node
	if startEmpty {
		if o.keepEmptyInline {
			if content.IsText(startLeaf) {
				startLeaf.ReplaceWith(content.CreateLineBreak())
			}
			c.ledger.Update(startInline)
			kept = startInline
		} else {
			startInline.Remove()
			c.ledger.Remove(startInline)
		}
	}
	if endEmpty {
		endInline.Remove()
		c.ledger.Remove(endInline)
	}

	if startP != endP {
		startP.Append(endP.Children()...)
		endP.Remove()
		c.ledger.Remove(endP)
	}
	c.ledger.Update(startP)

	switch {
	case kept != nil:
		return c.collapse(content.Leaf(kept), 0)
	case !startEmpty:
		return c.collapse(startLeaf, start.Offset)
	case !endEmpty:
		return c.collapse(endLeaf, 0)
	case prevInline != nil && prevInline.Parent() == startP:
		leaf := content.Leaf(prevInline)
		return c.collapse(leaf, content.EndOffset(leaf))
	case startP.HasChildren():
		return c.collapse(content.FirstLeaf(startP), 0)
	}
	inline := content.CreateEmptyInline(startInline.Style())
	startP.AppendChild(inline)
	c.ledger.Add(inline)
	return c.collapse(content.Leaf(inline), 0)
}
