package content

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/style"
)

func mustImport(t *testing.T, d Document) *dom.Node {
	t.Helper()
	root, err := Import(d)
	require.NoError(t, err)
	require.NoError(t, Validate(root))
	return root
}

func texts(p *dom.Node) []string {
	var out []string
	for in := p.FirstChild(); in != nil; in = in.NextSibling() {
		out = append(out, in.TextContent())
	}
	return out
}

func TestCreateRejectsWrongKinds(t *testing.T) {
	_, err := CreateText("")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = CreateInline(dom.NewElement("span"), nil)
	assert.ErrorIs(t, err, ErrInvalidStructure)

	_, err = CreateInline(dom.NewText(""), nil)
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = CreateParagraph(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidStructure)

	_, err = CreateParagraph([]*dom.Node{CreateLineBreak()}, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Error(), "paragraph child must be an inline")

	_, err = CreateRoot([]*dom.Node{CreateEmptyInline(nil)}, nil)
	assert.ErrorIs(t, err, ErrInvalidStructure)
}

func TestCreateEmptyRoot(t *testing.T) {
	root := CreateEmptyRoot(style.Map{
		style.VerticalAlign: "center",
		style.TextAlign:     "right",
		style.FontWeight:    "700",
	})
	require.NoError(t, Validate(root))

	p := root.FirstChild()
	in := p.FirstChild()
	assert.True(t, IsRoot(root))
	assert.True(t, IsEmptyParagraph(p))
	assert.True(t, IsLineBreak(Leaf(in)))
	assert.Equal(t, "center", root.Style().Get(style.VerticalAlign))
	assert.False(t, root.Style().Has(style.FontWeight))
	assert.Equal(t, "right", p.Style().Get(style.TextAlign))
	assert.Equal(t, "700", in.Style().Get(style.FontWeight))
	assert.Equal(t, 0, Length(in))
}

func TestLookupsAndPredicates(t *testing.T) {
	root := mustImport(t, Document{Paragraphs: []Paragraph{
		{Inlines: []Inline{{Text: "Hello"}, {Text: "World"}}},
	}})
	p := root.FirstChild()
	hello := Leaf(p.FirstChild())
	world := Leaf(p.LastChild())

	assert.Equal(t, p.FirstChild(), InlineOf(hello))
	assert.Equal(t, p, ParagraphOf(hello))
	assert.Equal(t, root, RootOf(world))
	assert.Nil(t, InlineOf(p))

	assert.True(t, IsParagraphStart(hello, 0))
	assert.False(t, IsParagraphStart(world, 0))
	assert.True(t, IsInlineStart(world, 0))
	assert.True(t, IsInlineEnd(hello, 5))
	assert.False(t, IsParagraphEnd(hello, 5))
	assert.True(t, IsParagraphEnd(world, 5))
	assert.True(t, IsParagraphEnd(p, 2))

	assert.True(t, ValidOffset(hello, 5))
	assert.False(t, ValidOffset(hello, 6))
	assert.False(t, ValidOffset(dom.NewText("é"), 1))
	assert.Equal(t, "HelloWorld", Text(root))
}

func TestSplitInline(t *testing.T) {
	root := mustImport(t, Document{Paragraphs: []Paragraph{
		{Inlines: []Inline{{Text: "0123456789", Style: style.Map{style.FontWeight: "700"}}}},
	}})
	p := root.FirstChild()

	tail, err := SplitInline(p.FirstChild(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"012", "3456789"}, texts(p))
	assert.Equal(t, "700", tail.Style().Get(style.FontWeight))
	assert.True(t, p.FirstChild().Style().Equal(tail.Style()))
	require.NoError(t, Validate(root))

	_, err = SplitInline(tail, 0)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
	_, err = SplitInline(tail, 7)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
	_, err = SplitInline(CreateEmptyInline(nil), 0)
	assert.ErrorIs(t, err, ErrInvalidStructure)
}

func TestSplitParagraphInsideText(t *testing.T) {
	root := mustImport(t, NewDocument("HelloWorld"))
	p := root.FirstChild()

	next, err := SplitParagraph(p, p.FirstChild(), 5)
	require.NoError(t, err)
	p.After(next)

	require.NoError(t, Validate(root))
	assert.Equal(t, "Hello\nWorld", Text(root))
}

func TestSplitParagraphAtBoundaries(t *testing.T) {
	root := mustImport(t, Document{Paragraphs: []Paragraph{
		{Inlines: []Inline{{Text: "ab"}, {Text: "cd"}}},
	}})
	p := root.FirstChild()

	next, err := SplitParagraph(p, p.FirstChild(), 2)
	require.NoError(t, err)
	p.After(next)
	assert.Equal(t, []string{"ab"}, texts(p))
	assert.Equal(t, []string{"cd"}, texts(next))

	end, err := SplitParagraph(next, next.FirstChild(), 2)
	require.NoError(t, err)
	next.After(end)
	assert.True(t, IsEmptyParagraph(end))

	start, err := SplitParagraph(p, p.FirstChild(), 0)
	require.NoError(t, err)
	p.After(start)
	assert.True(t, IsEmptyParagraph(p))
	assert.Equal(t, []string{"ab"}, texts(start))
	require.NoError(t, Validate(root))

	_, err = SplitParagraph(p, next.FirstChild(), 0)
	assert.ErrorIs(t, err, ErrInvalidStructure)
}

func TestSplitMergeRoundTrip(t *testing.T) {
	for _, offset := range []int{0, 1, 4, 7, 10} {
		root := mustImport(t, Document{Paragraphs: []Paragraph{
			{Inlines: []Inline{{Text: "0123456"}, {Text: "789"}}},
		}})
		p := root.FirstChild()
		inline := p.FirstChild()
		if offset > 7 {
			inline = p.LastChild()
			offset -= 7
		}

		next, err := SplitParagraph(p, inline, offset)
		require.NoError(t, err)
		p.After(next)
		require.NoError(t, Validate(root))

		merged, err := MergeParagraphs(p, next)
		require.NoError(t, err)
		require.NoError(t, Validate(root))
		assert.Equal(t, "0123456789", Text(merged))
		assert.Equal(t, 1, root.ChildCount())
	}
}

func TestMergeEmptyParagraphs(t *testing.T) {
	root := mustImport(t, Document{Paragraphs: []Paragraph{
		{},
		{Inlines: []Inline{{Text: "World"}}},
		{},
	}})
	first := root.FirstChild()

	_, err := MergeParagraphs(first, first.NextSibling())
	require.NoError(t, err)
	assert.Equal(t, []string{"World"}, texts(first), "empty target takes source children")

	_, err = MergeParagraphs(first, first.NextSibling())
	require.NoError(t, err)
	assert.Equal(t, []string{"World"}, texts(first), "empty source is dropped")
	assert.Equal(t, 1, root.ChildCount())

	_, err = MergeParagraphs(first, first)
	assert.ErrorIs(t, err, ErrInvalidStructure)
}

func TestValidateReportsPath(t *testing.T) {
	root := mustImport(t, NewDocument("a", "b"))
	second := root.LastChild()
	second.FirstChild().Remove()

	err := Validate(root)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, dom.Path{1}, verr.Path)
	assert.Contains(t, err.Error(), "paragraph has no inlines")

	root = mustImport(t, NewDocument("a"))
	Leaf(root.FirstChild().FirstChild()).SetData("")
	assert.ErrorIs(t, Validate(root), ErrEmptyText)
}

func TestImportExport(t *testing.T) {
	in := Document{
		Style: style.Map{style.VerticalAlign: "bottom"},
		Paragraphs: []Paragraph{
			{
				Style: style.Map{style.TextAlign: "center"},
				Inlines: []Inline{
					{Text: "Hello ", Style: style.Map{style.FontWeight: "400"}},
					{Text: "World", Style: style.Map{style.FontWeight: "700"}},
				},
			},
			{Inlines: []Inline{{Text: ""}}},
		},
	}
	root := mustImport(t, in)
	out := Export(root)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Hello World\n", out.Text())

	empty := mustImport(t, Document{})
	assert.True(t, IsEmptyParagraph(empty.FirstChild()))
}
