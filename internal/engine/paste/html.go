package paste

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/style"
)

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Blockquote: true,
	atom.Pre: true, atom.Tr: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Table: true, atom.Section: true,
	atom.Article: true, atom.Header: true, atom.Footer: true,
}

var droppedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true, atom.Title: true,
	atom.Meta: true, atom.Link: true, atom.Template: true, atom.Noscript: true,
}

// FromHTML parses an HTML fragment into paragraphs.
func (n *Normalizer) FromHTML(src string) (Fragment, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	b := &builder{n: n}
	b.walk(doc, nil, nil, false)
	b.flush(false)
	return Fragment{Paragraphs: b.out}, nil
}

type builder struct {
	n       *Normalizer
	out     []*dom.Node
	runs    []run
	pStyle  style.Map
	hasText bool
	space   bool
}

// flush emits the pending runs as a paragraph. With force, a paragraph is
// emitted even when nothing is pending.
func (b *builder) flush(force bool) {
	if !b.hasText && !force {
		b.runs = nil
		b.space = false
		return
	}
	b.out = append(b.out, b.n.paragraph(b.n.paragraphStyle(b.pStyle), b.runs))
	b.runs = nil
	b.hasText = false
	b.space = false
}

func (b *builder) text(s string, inline style.Map, pre bool) {
	if pre {
		lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
		for i, line := range lines {
			if i > 0 {
				b.flush(true)
			}
			if line != "" {
				b.runs = append(b.runs, run{text: line, style: inline})
				b.hasText = true
			}
		}
		return
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if b.hasText && s != "" {
			b.space = true
		}
		return
	}
	body := strings.Join(fields, " ")
	if b.hasText && (b.space || isSpace(s[0])) {
		body = " " + body
	}
	b.space = isSpace(s[len(s)-1])
	b.runs = append(b.runs, run{text: body, style: inline})
	b.hasText = true
}

func (b *builder) walk(node *html.Node, inline, para style.Map, pre bool) {
	switch node.Type {
	case html.TextNode:
		b.text(node.Data, inline, pre)
		return
	case html.ElementNode:
		if droppedElements[node.DataAtom] {
			return
		}
		if node.DataAtom == atom.Br {
			b.flush(true)
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	var attrStyle style.Map
	if node.Type == html.ElementNode {
		attrStyle = elementStyle(node)
		inline = overlay(inline, attrStyle.Only(style.InlineKeys()))
		if node.DataAtom == atom.Pre {
			pre = true
		}
	}

	block := node.Type == html.ElementNode && blockElements[node.DataAtom]
	if !block {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			b.walk(c, inline, para, pre)
		}
		return
	}

	b.flush(false)
	outer := b.pStyle
	para = overlay(para, attrStyle.Only(style.ParagraphKeys()))
	b.pStyle = para
	before := len(b.out)
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c, inline, para, pre)
	}
	b.flush(len(b.out) == before && leafBlock(node))
	b.pStyle = outer
}

// leafBlock reports whether node has no block descendants, so an empty
// leaf block still stands for an empty line.
func leafBlock(node *html.Node) bool {
	switch node.DataAtom {
	case atom.Ul, atom.Ol, atom.Table:
		return false
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (blockElements[c.DataAtom] || !leafBlock(c)) {
			return false
		}
	}
	return true
}

func overlay(base, top style.Map) style.Map {
	if len(top) == 0 {
		return base
	}
	out := base.Clone()
	for k, v := range top {
		out[k] = v
	}
	return out
}

// elementStyle maps presentational markup and the style attribute onto
// style properties.
func elementStyle(node *html.Node) style.Map {
	m := style.Map{}
	switch node.DataAtom {
	case atom.B, atom.Strong:
		m[style.FontWeight] = "700"
	case atom.I, atom.Em:
		m[style.FontStyle] = "italic"
	case atom.U, atom.Ins:
		m[style.TextDecoration] = "underline"
	case atom.S, atom.Strike, atom.Del:
		m[style.TextDecoration] = "line-through"
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		m[style.FontWeight] = "700"
	case atom.Font:
		if v := attr(node, "color"); v != "" {
			m[style.Color] = v
		}
		if v := attr(node, "face"); v != "" {
			m[style.FontFamily] = v
		}
	}
	if v := attr(node, "align"); v != "" {
		m[style.TextAlign] = strings.ToLower(v)
	}
	if v := attr(node, "dir"); v == "rtl" || v == "ltr" {
		m[style.Direction] = v
	}
	if decl := attr(node, "style"); decl != "" {
		s := dom.ParseStyle(decl)
		for _, name := range s.Names() {
			if name == "font-weight" {
				m[name] = fontWeight(s.Get(name))
				continue
			}
			m[name] = s.Get(name)
		}
	}
	return m
}

func fontWeight(v string) string {
	switch v {
	case "bold", "bolder":
		return "700"
	case "normal", "lighter":
		return "400"
	}
	return v
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
