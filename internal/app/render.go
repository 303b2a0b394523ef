package app

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/style"
)

// Format is an output format.
type Format string

// Output formats.
const (
	FormatText Format = "text" // styled preview
	FormatTree Format = "tree" // document structure with styles
	FormatJSON Format = "json" // the full report
)

// ParseFormat parses an output format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatTree, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, format Format, preview config.PreviewConfig) error {
	switch format {
	case FormatText:
		return renderText(w, r.Document, preview)
	case FormatTree:
		return renderTree(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// renderText prints the document as styled terminal text, one block per
// paragraph wrapped to the preview width.
func renderText(w io.Writer, d content.Document, preview config.PreviewConfig) error {
	re := lipgloss.NewRenderer(w)
	for _, p := range d.Paragraphs {
		var sb strings.Builder
		for _, in := range p.Inlines {
			if in.Text == "" && len(p.Inlines) > 1 {
				sb.WriteString("\n")
				continue
			}
			text := transform(in.Text, in.Style[style.TextTransform])
			if preview.NoColor {
				sb.WriteString(text)
				continue
			}
			sb.WriteString(inlineStyle(re, in.Style).Render(text))
		}

		block := re.NewStyle().Align(alignment(p.Style[style.TextAlign]))
		if preview.Width > 0 {
			block = block.Width(preview.Width)
		}
		out := block.Render(sb.String())
		lines := strings.Split(out, "\n")
		for i, l := range lines {
			lines[i] = strings.TrimRight(l, " ")
		}
		if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
			return err
		}
	}
	return nil
}

func inlineStyle(re *lipgloss.Renderer, m style.Map) lipgloss.Style {
	st := re.NewStyle()
	if isBold(m[style.FontWeight]) {
		st = st.Bold(true)
	}
	switch m[style.FontStyle] {
	case "italic", "oblique":
		st = st.Italic(true)
	}
	deco := m[style.TextDecoration]
	if strings.Contains(deco, "underline") {
		st = st.Underline(true)
	}
	if strings.Contains(deco, "line-through") {
		st = st.Strikethrough(true)
	}
	if c, ok := terminalColor(m[style.Color]); ok {
		st = st.Foreground(c)
	}
	return st
}

// terminalColor converts a hex color to a terminal color. Black is the
// default text color and is left to the terminal.
func terminalColor(v string) (lipgloss.Color, bool) {
	c, err := colorful.Hex(v)
	if err != nil || c == (colorful.Color{}) {
		return "", false
	}
	return lipgloss.Color(c.Hex()), true
}

func isBold(weight string) bool {
	if weight == "bold" || weight == "bolder" {
		return true
	}
	n, err := strconv.Atoi(weight)
	return err == nil && n >= 600
}

func alignment(textAlign string) lipgloss.Position {
	switch textAlign {
	case "center":
		return lipgloss.Center
	case "right", "end":
		return lipgloss.Right
	}
	return lipgloss.Left
}

func transform(text, mode string) string {
	switch mode {
	case "uppercase":
		return strings.ToUpper(text)
	case "lowercase":
		return strings.ToLower(text)
	}
	return text
}

// renderTree prints the structure of the document with the explicit
// styles of every level.
func renderTree(w io.Writer, r *Report) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "root%s\n", styleSuffix(r.Document.Style))
	for i, p := range r.Document.Paragraphs {
		fmt.Fprintf(&sb, "  paragraph %d%s\n", i, styleSuffix(p.Style))
		for _, in := range p.Inlines {
			if in.Text == "" {
				fmt.Fprintf(&sb, "    <br>%s\n", styleSuffix(in.Style))
				continue
			}
			fmt.Fprintf(&sb, "    %q%s\n", in.Text, styleSuffix(in.Style))
		}
	}
	for _, s := range r.Steps {
		if s.Error != "" {
			fmt.Fprintf(&sb, "! step %d (%s): %s\n", s.Index, s.Kind, s.Error)
		}
	}
	if r.Expected != nil && !r.Matched {
		fmt.Fprintf(&sb, "! expected %q, got %q\n", *r.Expected, r.Text)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func styleSuffix(m style.Map) string {
	if len(m) == 0 {
		return ""
	}
	keys := slices.Sorted(maps.Keys(m))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return " [" + strings.Join(parts, " ") + "]"
}
