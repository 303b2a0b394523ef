package selection

import (
	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/style"
)

// InsertText inserts text at the caret. A range selection is replaced.
func (c *Controller) InsertText(text string) error {
	done, err := c.begin("insert text")
	if err != nil {
		return err
	}
	defer done()
	return c.insertText(text)
}

// ReplaceLineBreak turns the line break under the caret into text.
func (c *Controller) ReplaceLineBreak(text string) error {
	done, err := c.begin("replace line break")
	if err != nil {
		return err
	}
	defer done()
	return c.replaceLineBreak(text)
}

// ReplaceText replaces a range inside a single text leaf.
func (c *Controller) ReplaceText(text string) error {
	done, err := c.begin("replace text")
	if err != nil {
		return err
	}
	defer done()
	return c.replaceText(text)
}

// ReplaceInlines replaces a range spanning several inlines of one
// paragraph.
func (c *Controller) ReplaceInlines(text string) error {
	done, err := c.begin("replace inlines")
	if err != nil {
		return err
	}
	defer done()
	return c.replaceInlines(text)
}

// ReplaceParagraphs replaces a range spanning several paragraphs.
func (c *Controller) ReplaceParagraphs(text string) error {
	done, err := c.begin("replace paragraphs")
	if err != nil {
		return err
	}
	defer done()
	return c.replaceParagraphs(text)
}

// InsertParagraph splits the paragraph at the caret.
func (c *Controller) InsertParagraph() error {
	done, err := c.begin("insert paragraph")
	if err != nil {
		return err
	}
	defer done()
	return c.insertParagraph()
}

// ReplaceWithParagraph removes the selected range and splits the paragraph
// at the resulting caret.
func (c *Controller) ReplaceWithParagraph() error {
	done, err := c.begin("replace with paragraph")
	if err != nil {
		return err
	}
	defer done()
	if err := c.removeSelected(removeOptions{}); err != nil {
		return err
	}
	return c.insertParagraph()
}

func (c *Controller) insertText(text string) error {
	if text == "" {
		return nil
	}
	if !c.IsCollapsed() {
		return c.replace(text)
	}
	focus := c.Focus()
	if content.IsLineBreak(focus.Node) {
		return c.replaceLineBreak(text)
	}
	if !content.IsText(focus.Node) || !content.ValidOffset(focus.Node, focus.Offset) {
		return unresolvable("insert text", focus)
	}
	inline := content.InlineOf(focus.Node)
	if len(c.pending) > 0 && !style.Covers(inline.Style(), c.pending, style.InlineKeys()) {
		return c.insertStyled(inline, focus.Offset, text)
	}
	c.pending = nil

	data := focus.Node.Data()
	focus.Node.SetData(data[:focus.Offset] + text + data[focus.Offset:])
	c.ledger.Update(inline)
	return c.collapse(focus.Node, focus.Offset+len(text))
}

// insertStyled inserts text as a new inline carrying the pending style,
// splitting inline when the caret is inside it.
func (c *Controller) insertStyled(inline *dom.Node, offset int, text string) error {
	s := inline.Style().Clone()
	style.Apply(s, c.pending, style.InlineKeys())
	leaf, err := content.CreateText(text)
	if err != nil {
		return err
	}
	added, err := content.CreateInline(leaf, s)
	if err != nil {
		return err
	}
	switch {
	case offset == 0:
		inline.Before(added)
	case offset == content.Length(inline):
		inline.After(added)
	default:
		tail, err := content.SplitInline(inline, offset)
		if err != nil {
			return err
		}
		c.ledger.Update(inline)
		c.ledger.Add(tail)
		inline.After(added)
	}
	c.ledger.Add(added)
	c.ledger.Update(inline.Parent())
	c.pending = nil
	return c.collapse(leaf, len(text))
}

func (c *Controller) replaceLineBreak(text string) error {
	focus := c.Focus()
	if !content.IsLineBreak(focus.Node) {
		return unresolvable("replace line break", focus)
	}
	if text == "" {
		return nil
	}
	inline := content.InlineOf(focus.Node)
	leaf := dom.NewText(text)
	focus.Node.ReplaceWith(leaf)
	if len(c.pending) > 0 {
		style.Apply(inline.Style(), c.pending, style.InlineKeys())
		c.pending = nil
	}
	c.ledger.Update(inline)
	return c.collapse(leaf, len(text))
}

// replace picks the replacement strategy for a range selection.
func (c *Controller) replace(text string) error {
	switch {
	case c.IsMultiParagraph():
		return c.replaceParagraphs(text)
	case c.IsMultiInline():
		return c.replaceInlines(text)
	default:
		return c.replaceText(text)
	}
}

func (c *Controller) replaceText(text string) error {
	start, end := c.Start(), c.End()
	if start.Node != end.Node {
		return c.replace(text)
	}
	if !content.IsText(start.Node) || text == "" {
		if err := c.removeSelected(removeOptions{}); err != nil {
			return err
		}
		return c.insertAtCaret(text)
	}
	leaf := start.Node
	data := leaf.Data()
	leaf.SetData(data[:start.Offset] + text + data[end.Offset:])
	c.ledger.Update(content.InlineOf(leaf))
	c.pending = nil
	return c.collapse(leaf, start.Offset+len(text))
}

func (c *Controller) replaceInlines(text string) error {
	start, end := c.Start(), c.End()
	p := content.ParagraphOf(start.Node)
	if p != content.ParagraphOf(end.Node) {
		return c.replaceParagraphs(text)
	}
	if covers(p, start, end) {
		return c.replaceParagraphContent(p, content.InlineOf(start.Node), text)
	}
	return c.removeThenInsert(text)
}

func (c *Controller) replaceParagraphs(text string) error {
	start, end := c.Start(), c.End()
	first := content.ParagraphOf(start.Node)
	last := content.ParagraphOf(end.Node)
	if first == last {
		return c.replaceInlines(text)
	}
	if !content.IsParagraphStart(start.Node, start.Offset) || !content.IsParagraphEnd(end.Node, end.Offset) {
		return c.removeThenInsert(text)
	}
	for p := first.NextSibling(); p != nil; {
		next := p.NextSibling()
		p.Remove()
		c.ledger.Remove(p)
		if p == last {
			break
		}
		p = next
	}
	return c.replaceParagraphContent(first, content.InlineOf(start.Node), text)
}

// covers reports whether [start, end] spans the whole of p.
func covers(p *dom.Node, start, end dom.Position) bool {
	return content.ParagraphOf(start.Node) == p &&
		content.ParagraphOf(end.Node) == p &&
		content.IsParagraphStart(start.Node, start.Offset) &&
		content.IsParagraphEnd(end.Node, end.Offset)
}

// replaceParagraphContent replaces every inline of p with one inline
// holding text, styled like model.
func (c *Controller) replaceParagraphContent(p, model *dom.Node, text string) error {
	s := model.Style().Clone()
	if len(c.pending) > 0 {
		style.Apply(s, c.pending, style.InlineKeys())
		c.pending = nil
	}
	var inline *dom.Node
	if text == "" {
		inline = content.CreateEmptyInline(s)
	} else {
		leaf, err := content.CreateText(text)
		if err != nil {
			return err
		}
		if inline, err = content.CreateInline(leaf, s); err != nil {
			return err
		}
	}
	for _, old := range p.Children() {
		c.ledger.Remove(old)
	}
	p.ReplaceChildren(inline)
	c.ledger.Add(inline)
	c.ledger.Update(p)
	leaf := content.Leaf(inline)
	return c.collapse(leaf, content.EndOffset(leaf))
}

// removeThenInsert deletes the range, keeping the start inline as a style
// carrier, and types text at the resulting caret.
func (c *Controller) removeThenInsert(text string) error {
	if text == "" {
		return c.removeSelected(removeOptions{})
	}
	if err := c.removeSelected(removeOptions{keepEmptyInline: true}); err != nil {
		return err
	}
	return c.insertAtCaret(text)
}

func (c *Controller) insertAtCaret(text string) error {
	if text == "" {
		return nil
	}
	if c.IsLineBreakFocus() {
		return c.replaceLineBreak(text)
	}
	return c.insertText(text)
}

func (c *Controller) insertParagraph() error {
	if !c.IsCollapsed() {
		if err := c.removeSelected(removeOptions{}); err != nil {
			return err
		}
	}
	focus := c.Focus()
	p := content.ParagraphOf(focus.Node)
	inline := content.InlineOf(focus.Node)
	if p == nil || inline == nil {
		return unresolvable("insert paragraph", focus)
	}
	switch {
	case content.IsParagraphEnd(focus.Node, focus.Offset):
		added := content.CreateEmptyParagraph(p.Style(), inline.Style())
		p.After(added)
		c.ledger.Add(added)
		return c.collapse(content.FirstLeaf(added), 0)
	case content.IsParagraphStart(focus.Node, focus.Offset):
		added := content.CreateEmptyParagraph(p.Style(), inline.Style())
		p.Before(added)
		c.ledger.Add(added)
		return c.collapse(focus.Node, focus.Offset)
	}
	added, err := content.SplitParagraph(p, inline, focus.Offset)
	if err != nil {
		return err
	}
	p.After(added)
	c.ledger.Update(p)
	c.ledger.Add(added)
	return c.collapse(content.FirstLeaf(added), 0)
}
