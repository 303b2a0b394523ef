package content

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/style"
)

// TypeAttr is the attribute that tags a node with its document kind.
const TypeAttr = "data-itype"

// Node kind tags.
const (
	TypeRoot      = "root"
	TypeParagraph = "paragraph"
	TypeInline    = "inline"
)

// Element tags used for each kind.
const (
	TagRoot      = "div"
	TagParagraph = "div"
	TagInline    = "span"
	TagLineBreak = "br"
)

// IsRoot reports whether n is a root node.
func IsRoot(n *dom.Node) bool {
	return n.IsElement() && n.Attr(TypeAttr) == TypeRoot
}

// IsParagraph reports whether n is a paragraph node.
func IsParagraph(n *dom.Node) bool {
	return n.IsElement() && n.Attr(TypeAttr) == TypeParagraph
}

// IsInline reports whether n is an inline run.
func IsInline(n *dom.Node) bool {
	return n.IsElement() && n.Attr(TypeAttr) == TypeInline
}

// IsLineBreak reports whether n is a line-break leaf.
func IsLineBreak(n *dom.Node) bool {
	return n.IsElement() && n.Tag() == TagLineBreak
}

// IsText reports whether n is a text leaf.
func IsText(n *dom.Node) bool {
	return n.IsText()
}

// IsLeaf reports whether n is a text or line-break leaf.
func IsLeaf(n *dom.Node) bool {
	return IsText(n) || IsLineBreak(n)
}

// CreateText creates a text leaf. Empty text is rejected.
func CreateText(text string) (*dom.Node, error) {
	if text == "" {
		return nil, &ValidationError{Reason: "text leaf needs at least one character", Err: ErrEmptyText}
	}
	return dom.NewText(text), nil
}

// CreateLineBreak creates a line-break leaf.
func CreateLineBreak() *dom.Node {
	return dom.NewElement(TagLineBreak)
}

func newElement(tag, kind string, s *dom.Style) *dom.Node {
	n := dom.NewElement(tag)
	n.SetAttr(TypeAttr, kind)
	n.Style().Merge(s)
	return n
}

// CreateInline creates an inline run wrapping leaf with a copy of s.
func CreateInline(leaf *dom.Node, s *dom.Style) (*dom.Node, error) {
	if leaf == nil || !IsLeaf(leaf) {
		return nil, invalid(leaf, "inline child must be a text or line-break leaf")
	}
	if IsText(leaf) && leaf.Data() == "" {
		return nil, &ValidationError{Node: leaf, Reason: "inline text leaf is empty", Err: ErrEmptyText}
	}
	n := newElement(TagInline, TypeInline, s)
	n.AppendChild(leaf)
	return n, nil
}

// CreateParagraph creates a paragraph holding inlines with a copy of s.
func CreateParagraph(inlines []*dom.Node, s *dom.Style) (*dom.Node, error) {
	if len(inlines) == 0 {
		return nil, invalid(nil, "paragraph needs at least one inline")
	}
	for _, c := range inlines {
		if !IsInline(c) {
			return nil, invalid(c, "paragraph child must be an inline, got %s", c.Tag())
		}
	}
	n := newElement(TagParagraph, TypeParagraph, s)
	n.Append(inlines...)
	return n, nil
}

// CreateRoot creates a root holding paragraphs with a copy of s.
func CreateRoot(paragraphs []*dom.Node, s *dom.Style) (*dom.Node, error) {
	if len(paragraphs) == 0 {
		return nil, invalid(nil, "root needs at least one paragraph")
	}
	for _, c := range paragraphs {
		if !IsParagraph(c) {
			return nil, invalid(c, "root child must be a paragraph, got %s", c.Tag())
		}
	}
	n := newElement(TagRoot, TypeRoot, s)
	n.Append(paragraphs...)
	return n, nil
}

// CreateEmptyInline creates an inline holding a line break.
func CreateEmptyInline(s *dom.Style) *dom.Node {
	n := newElement(TagInline, TypeInline, s)
	n.AppendChild(CreateLineBreak())
	return n
}

// CreateEmptyParagraph creates a paragraph holding one empty inline.
func CreateEmptyParagraph(paragraphStyle, inlineStyle *dom.Style) *dom.Node {
	n := newElement(TagParagraph, TypeParagraph, paragraphStyle)
	n.AppendChild(CreateEmptyInline(inlineStyle))
	return n
}

// CreateEmptyRoot creates the canonical empty document. Each level takes
// the subset of styles that belongs to it.
func CreateEmptyRoot(styles style.Map) *dom.Node {
	n := newElement(TagRoot, TypeRoot, styles.Only(style.RootKeys()).Style())
	n.AppendChild(CreateEmptyParagraph(
		styles.Only(style.ParagraphKeys()).Style(),
		styles.Only(style.InlineKeys()).Style(),
	))
	return n
}

// InlineOf returns the inline n belongs to: n itself if it is an inline,
// or its parent if n is a leaf. It returns nil otherwise.
func InlineOf(n *dom.Node) *dom.Node {
	if n == nil {
		return nil
	}
	if IsInline(n) {
		return n
	}
	if IsLeaf(n) && IsInline(n.Parent()) {
		return n.Parent()
	}
	return nil
}

// ParagraphOf returns the nearest paragraph ancestor of n, inclusive.
func ParagraphOf(n *dom.Node) *dom.Node {
	for m := n; m != nil; m = m.Parent() {
		if IsParagraph(m) {
			return m
		}
	}
	return nil
}

// RootOf returns the nearest root ancestor of n, inclusive.
func RootOf(n *dom.Node) *dom.Node {
	for m := n; m != nil; m = m.Parent() {
		if IsRoot(m) {
			return m
		}
	}
	return nil
}

// Leaf returns the leaf of an inline.
func Leaf(inline *dom.Node) *dom.Node {
	if inline == nil {
		return nil
	}
	return inline.FirstChild()
}

// FirstLeaf returns the first leaf of a paragraph.
func FirstLeaf(paragraph *dom.Node) *dom.Node {
	return Leaf(paragraph.FirstChild())
}

// LastLeaf returns the last leaf of a paragraph.
func LastLeaf(paragraph *dom.Node) *dom.Node {
	return Leaf(paragraph.LastChild())
}

// Length returns the text length of an inline or leaf. Line breaks have
// length 0.
func Length(n *dom.Node) int {
	if n == nil {
		return 0
	}
	if IsInline(n) {
		n = Leaf(n)
	}
	if IsText(n) {
		return len(n.Data())
	}
	return 0
}

// EndOffset returns the offset of the end position inside a leaf.
func EndOffset(leaf *dom.Node) int {
	return Length(leaf)
}

// IsEmptyInline reports whether inline holds a line break.
func IsEmptyInline(inline *dom.Node) bool {
	return IsInline(inline) && IsLineBreak(Leaf(inline))
}

// IsEmptyParagraph reports whether p has the canonical empty shape.
func IsEmptyParagraph(p *dom.Node) bool {
	return IsParagraph(p) && p.ChildCount() == 1 && IsEmptyInline(p.FirstChild())
}

// IsInlineStart reports whether (n, offset) is at the start of its inline.
func IsInlineStart(n *dom.Node, offset int) bool {
	switch {
	case IsLineBreak(n):
		return true
	case IsText(n), IsInline(n):
		return offset == 0
	}
	return false
}

// IsInlineEnd reports whether (n, offset) is at the end of its inline.
func IsInlineEnd(n *dom.Node, offset int) bool {
	switch {
	case IsLineBreak(n):
		return true
	case IsText(n):
		return offset == len(n.Data())
	case IsInline(n):
		return offset == n.ChildCount()
	}
	return false
}

// IsParagraphStart reports whether (n, offset) is at the start of its
// paragraph.
func IsParagraphStart(n *dom.Node, offset int) bool {
	if IsParagraph(n) {
		return offset == 0
	}
	inline := InlineOf(n)
	if inline == nil || inline.PrevSibling() != nil {
		return false
	}
	return IsInlineStart(n, offset)
}

// IsParagraphEnd reports whether (n, offset) is at the end of its
// paragraph.
func IsParagraphEnd(n *dom.Node, offset int) bool {
	if IsParagraph(n) {
		return offset == n.ChildCount()
	}
	inline := InlineOf(n)
	if inline == nil || inline.NextSibling() != nil {
		return false
	}
	return IsInlineEnd(n, offset)
}

// ValidOffset reports whether offset is a valid caret position in leaf.
func ValidOffset(leaf *dom.Node, offset int) bool {
	if IsLineBreak(leaf) {
		return offset == 0
	}
	if !IsText(leaf) {
		return false
	}
	data := leaf.Data()
	if offset < 0 || offset > len(data) {
		return false
	}
	return offset == len(data) || utf8.RuneStart(data[offset])
}

// Text returns the plain text of a root or paragraph. Paragraphs are
// separated by newlines.
func Text(n *dom.Node) string {
	if IsParagraph(n) || IsInline(n) || IsLeaf(n) {
		return n.TextContent()
	}
	var sb strings.Builder
	for p := n.FirstChild(); p != nil; p = p.NextSibling() {
		if p != n.FirstChild() {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.TextContent())
	}
	return sb.String()
}

// Validate checks every structural invariant of the tree under root.
func Validate(root *dom.Node) error {
	fail := func(n *dom.Node, err error, reason string) error {
		path, _ := dom.PathOf(root, n)
		return &ValidationError{Node: n, Path: path, Reason: reason, Err: err}
	}
	if !IsRoot(root) {
		return fail(root, ErrInvalidStructure, "not a root")
	}
	if !root.HasChildren() {
		return fail(root, ErrInvalidStructure, "root has no paragraphs")
	}
	for p := root.FirstChild(); p != nil; p = p.NextSibling() {
		if !IsParagraph(p) {
			return fail(p, ErrInvalidStructure, "root child is not a paragraph")
		}
		if !p.HasChildren() {
			return fail(p, ErrInvalidStructure, "paragraph has no inlines")
		}
		for in := p.FirstChild(); in != nil; in = in.NextSibling() {
			if !IsInline(in) {
				return fail(in, ErrInvalidStructure, "paragraph child is not an inline")
			}
			if in.ChildCount() != 1 {
				return fail(in, ErrInvalidStructure, "inline must hold exactly one leaf")
			}
			leaf := in.FirstChild()
			if !IsLeaf(leaf) {
				return fail(leaf, ErrInvalidStructure, "inline child is not a leaf")
			}
			if IsText(leaf) && leaf.Data() == "" {
				return fail(leaf, ErrEmptyText, "empty text leaf")
			}
		}
	}
	return nil
}
