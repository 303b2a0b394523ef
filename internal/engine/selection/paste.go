package selection

import (
	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/dom"
)

// InsertPaste splices detached paragraphs into the document at the caret
// and leaves the caret at the end of the last one. A range selection is
// deleted first.
func (c *Controller) InsertPaste(paragraphs []*dom.Node) error {
	done, err := c.begin("insert paste")
	if err != nil {
		return err
	}
	defer done()
	return c.insertPaste(paragraphs)
}

// ReplaceWithPaste deletes the selected range and pastes paragraphs at the
// resulting caret.
func (c *Controller) ReplaceWithPaste(paragraphs []*dom.Node) error {
	done, err := c.begin("replace with paste")
	if err != nil {
		return err
	}
	defer done()
	if err := c.removeSelected(removeOptions{}); err != nil {
		return err
	}
	return c.insertPaste(paragraphs)
}

func (c *Controller) insertPaste(paragraphs []*dom.Node) error {
	if len(paragraphs) == 0 {
		return nil
	}
	for _, p := range paragraphs {
		if !content.IsParagraph(p) || p.Parent() != nil || !p.HasChildren() {
			return &SelectionError{Op: "insert paste", Node: p, Err: content.ErrInvalidStructure}
		}
	}
	if !c.IsCollapsed() {
		if err := c.removeSelected(removeOptions{}); err != nil {
			return err
		}
	}
	focus := c.Focus()
	p := content.ParagraphOf(focus.Node)
	inline := content.InlineOf(focus.Node)
	if p == nil || inline == nil {
		return unresolvable("insert paste", focus)
	}

	switch {
	case content.IsEmptyParagraph(p):
		p.After(paragraphs...)
		p.Remove()
		c.ledger.Remove(p)
	case content.IsParagraphStart(focus.Node, focus.Offset):
		p.Before(paragraphs...)
	case content.IsParagraphEnd(focus.Node, focus.Offset):
		p.After(paragraphs...)
	default:
		tail, err := content.SplitParagraph(p, inline, focus.Offset)
		if err != nil {
			return err
		}
		p.After(append(paragraphs[:len(paragraphs):len(paragraphs)], tail)...)
		c.ledger.Update(p)
		c.ledger.Add(tail)
	}
	for _, added := range paragraphs {
		c.ledger.Add(added)
	}
	leaf := content.LastLeaf(paragraphs[len(paragraphs)-1])
	return c.collapse(leaf, content.EndOffset(leaf))
}
