package content

import (
	"fmt"

	"github.com/dshills/inkwell/internal/engine/dom"
)

// SplitInline divides the text leaf of inline at offset. inline keeps the
// head; a new inline with an identical style holds the tail and is
// inserted right after inline when inline is attached. The new inline is
// returned. offset must fall strictly inside the text.
func SplitInline(inline *dom.Node, offset int) (*dom.Node, error) {
	if !IsInline(inline) {
		return nil, invalid(inline, "split target is not an inline")
	}
	leaf := Leaf(inline)
	if !IsText(leaf) {
		return nil, invalid(inline, "cannot split a line break")
	}
	data := leaf.Data()
	if offset <= 0 || offset >= len(data) || !ValidOffset(leaf, offset) {
		return nil, &ValidationError{
			Node:   inline,
			Reason: fmt.Sprintf("split offset %d outside (0, %d)", offset, len(data)),
			Err:    ErrOffsetOutOfRange,
		}
	}
	tail := newElement(TagInline, TypeInline, inline.Style())
	tail.AppendChild(dom.NewText(data[offset:]))
	leaf.SetData(data[:offset])
	if inline.Parent() != nil {
		inline.After(tail)
	}
	return tail, nil
}

// SplitParagraph moves everything after (inline, offset) into a new
// paragraph that copies paragraph's style. If the split point is inside
// the inline's text, the inline is split first; at the inline's end only
// the following siblings move. Either paragraph left without inlines gets
// an empty inline styled like inline. The new paragraph is returned
// detached.
func SplitParagraph(paragraph, inline *dom.Node, offset int) (*dom.Node, error) {
	if !IsParagraph(paragraph) {
		return nil, invalid(paragraph, "split target is not a paragraph")
	}
	if inline.Parent() != paragraph {
		return nil, invalid(inline, "inline is not a child of the paragraph")
	}
	length := Length(inline)
	if offset < 0 || offset > length {
		return nil, &ValidationError{
			Node:   inline,
			Reason: fmt.Sprintf("split offset %d outside [0, %d]", offset, length),
			Err:    ErrOffsetOutOfRange,
		}
	}

	var moved []*dom.Node
	switch {
	case offset == length:
		// Line breaks have length 0 and always split after themselves.
		for s := inline.NextSibling(); s != nil; s = s.NextSibling() {
			moved = append(moved, s)
		}
	case offset == 0:
		for s := inline; s != nil; s = s.NextSibling() {
			moved = append(moved, s)
		}
	default:
		tail, err := SplitInline(inline, offset)
		if err != nil {
			return nil, err
		}
		for s := tail; s != nil; s = s.NextSibling() {
			moved = append(moved, s)
		}
	}

	next := newElement(TagParagraph, TypeParagraph, paragraph.Style())
	next.Append(moved...)
	if !next.HasChildren() {
		next.AppendChild(CreateEmptyInline(inline.Style()))
	}
	if !paragraph.HasChildren() {
		paragraph.AppendChild(CreateEmptyInline(inline.Style()))
	}
	return next, nil
}

// MergeParagraphs appends the inlines of b to a and removes b. When a has
// the canonical empty shape its line break is discarded in favor of b's
// inlines; when b is empty it is simply dropped. a is returned.
func MergeParagraphs(a, b *dom.Node) (*dom.Node, error) {
	if !IsParagraph(a) || !IsParagraph(b) {
		return nil, invalid(b, "merge operands must be paragraphs")
	}
	if a == b {
		return nil, invalid(a, "cannot merge a paragraph with itself")
	}
	switch {
	case IsEmptyParagraph(b):
	case IsEmptyParagraph(a):
		a.ReplaceChildren(b.Children()...)
	default:
		a.Append(b.Children()...)
	}
	b.Remove()
	return a, nil
}
