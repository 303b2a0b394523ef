package content

import (
	"strings"

	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/style"
)

// Document is a plain value description of a document tree, used to load
// and export content.
type Document struct {
	Style      style.Map   `json:"style,omitempty" yaml:"style,omitempty" toml:"style,omitempty"`
	Paragraphs []Paragraph `json:"paragraphs" yaml:"paragraphs" toml:"paragraphs"`
}

// Paragraph describes one paragraph of a Document.
type Paragraph struct {
	Style   style.Map `json:"style,omitempty" yaml:"style,omitempty" toml:"style,omitempty"`
	Inlines []Inline  `json:"inlines" yaml:"inlines" toml:"inlines"`
}

// Inline describes one inline run. Empty text is a line break.
type Inline struct {
	Text  string    `json:"text" yaml:"text" toml:"text"`
	Style style.Map `json:"style,omitempty" yaml:"style,omitempty" toml:"style,omitempty"`
}

// NewDocument builds an unstyled document with one single-inline
// paragraph per argument.
func NewDocument(paragraphs ...string) Document {
	var d Document
	for _, p := range paragraphs {
		d.Paragraphs = append(d.Paragraphs, Paragraph{Inlines: []Inline{{Text: p}}})
	}
	return d
}

// Text returns the plain text of the document, paragraphs separated by
// newlines.
func (d Document) Text() string {
	parts := make([]string, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		var sb strings.Builder
		for _, in := range p.Inlines {
			sb.WriteString(in.Text)
		}
		parts[i] = sb.String()
	}
	return strings.Join(parts, "\n")
}

// Import builds a root from d. Paragraphs without inlines get an empty
// inline; a document without paragraphs becomes the canonical empty
// document. Every level is created with the subset of its style map that
// belongs to it.
func Import(d Document) (*dom.Node, error) {
	if len(d.Paragraphs) == 0 {
		return CreateEmptyRoot(d.Style), nil
	}
	paragraphs := make([]*dom.Node, 0, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		pStyle := p.Style.Only(style.ParagraphKeys()).Style()
		if len(p.Inlines) == 0 {
			paragraphs = append(paragraphs, CreateEmptyParagraph(pStyle, nil))
			continue
		}
		inlines := make([]*dom.Node, 0, len(p.Inlines))
		for _, in := range p.Inlines {
			iStyle := in.Style.Only(style.InlineKeys()).Style()
			if in.Text == "" {
				inlines = append(inlines, CreateEmptyInline(iStyle))
				continue
			}
			leaf, err := CreateText(in.Text)
			if err != nil {
				return nil, err
			}
			inline, err := CreateInline(leaf, iStyle)
			if err != nil {
				return nil, err
			}
			inlines = append(inlines, inline)
		}
		paragraph, err := CreateParagraph(inlines, pStyle)
		if err != nil {
			return nil, err
		}
		paragraphs = append(paragraphs, paragraph)
	}
	return CreateRoot(paragraphs, d.Style.Only(style.RootKeys()).Style())
}

// Export describes the tree under root as a Document.
func Export(root *dom.Node) Document {
	d := Document{Style: styleMap(root.Style())}
	for p := root.FirstChild(); p != nil; p = p.NextSibling() {
		para := Paragraph{Style: styleMap(p.Style())}
		for in := p.FirstChild(); in != nil; in = in.NextSibling() {
			para.Inlines = append(para.Inlines, Inline{
				Text:  in.TextContent(),
				Style: styleMap(in.Style()),
			})
		}
		d.Paragraphs = append(d.Paragraphs, para)
	}
	return d
}

func styleMap(s *dom.Style) style.Map {
	if s.Len() == 0 {
		return nil
	}
	return style.Map(s.Map())
}
