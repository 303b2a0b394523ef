package paste

import (
	"errors"
	"strings"

	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/style"
)

// ErrMalformed indicates a payload could not be parsed.
var ErrMalformed = errors.New("malformed paste payload")

// Data is a clipboard payload. HTML is preferred when present.
type Data struct {
	Text string
	HTML string
}

// IsEmpty reports whether the payload carries nothing.
func (d Data) IsEmpty() bool { return d.Text == "" && d.HTML == "" }

// Fragment is a run of detached paragraphs.
type Fragment struct {
	Paragraphs []*dom.Node
}

// Len returns the number of paragraphs.
func (f Fragment) Len() int { return len(f.Paragraphs) }

// IsEmpty reports whether the fragment holds no paragraphs.
func (f Fragment) IsEmpty() bool { return len(f.Paragraphs) == 0 }

// Text returns the fragment's text, paragraphs separated by newlines.
func (f Fragment) Text() string {
	parts := make([]string, len(f.Paragraphs))
	for i, p := range f.Paragraphs {
		parts[i] = p.TextContent()
	}
	return strings.Join(parts, "\n")
}

// Normalizer converts payloads into fragments.
type Normalizer struct {
	defaults style.Map
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithDefaults sets the style given to unstyled content.
func WithDefaults(m style.Map) Option {
	return func(n *Normalizer) {
		n.defaults = m.Clone()
	}
}

// New creates a normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{defaults: style.Defaults()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts d, preferring its HTML form.
func (n *Normalizer) Normalize(d Data) (Fragment, error) {
	if d.HTML != "" {
		return n.FromHTML(d.HTML)
	}
	return n.FromText(d.Text), nil
}

// FromText creates one paragraph per line of text. Both \n and \r\n end a
// line; empty lines become empty paragraphs.
func (n *Normalizer) FromText(text string) Fragment {
	if text == "" {
		return Fragment{}
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	f := Fragment{Paragraphs: make([]*dom.Node, 0, len(lines))}
	for _, line := range lines {
		f.Paragraphs = append(f.Paragraphs, n.paragraph(n.paragraphStyle(nil), []run{{text: line}}))
	}
	return f
}

// run is a piece of text with its inline style overlay.
type run struct {
	text  string
	style style.Map
}

func (n *Normalizer) inlineStyle(overlay style.Map) *dom.Style {
	m := n.defaults.Only(style.InlineKeys())
	for k, v := range overlay.Only(style.InlineKeys()) {
		if v == "" {
			delete(m, k)
			continue
		}
		m[k] = v
	}
	return m.Style()
}

func (n *Normalizer) paragraphStyle(overlay style.Map) *dom.Style {
	m := n.defaults.Only(style.ParagraphKeys())
	for k, v := range overlay.Only(style.ParagraphKeys()) {
		m[k] = v
	}
	return m.Style()
}

// paragraph builds a paragraph from runs, joining neighbors with equal
// styles. Empty runs are skipped; a paragraph without text gets an empty
// inline.
func (n *Normalizer) paragraph(ps *dom.Style, runs []run) *dom.Node {
	var inlines []*dom.Node
	for _, r := range runs {
		if r.text == "" {
			continue
		}
		s := n.inlineStyle(r.style)
		if k := len(inlines); k > 0 && inlines[k-1].Style().Equal(s) {
			leaf := content.Leaf(inlines[k-1])
			leaf.SetData(leaf.Data() + r.text)
			continue
		}
		leaf, _ := content.CreateText(r.text)
		inline, _ := content.CreateInline(leaf, s)
		inlines = append(inlines, inline)
	}
	if len(inlines) == 0 {
		var overlay style.Map
		if len(runs) > 0 {
			overlay = runs[0].style
		}
		return content.CreateEmptyParagraph(ps, n.inlineStyle(overlay))
	}
	p, _ := content.CreateParagraph(inlines, ps)
	return p
}
