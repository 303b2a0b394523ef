package style

import (
	"maps"
	"slices"

	"github.com/dshills/inkwell/internal/engine/dom"
)

// Property names.
const (
	VerticalAlign = "vertical-align"

	TextAlign  = "text-align"
	Direction  = "direction"
	TextIndent = "text-indent"

	FontFamily     = "font-family"
	FontWeight     = "font-weight"
	FontSize       = "font-size"
	FontStyle      = "font-style"
	FontID         = "--font-id"
	FontVariantID  = "--font-variant-id"
	LineHeight     = "line-height"
	LetterSpacing  = "letter-spacing"
	TextDecoration = "text-decoration"
	TextTransform  = "text-transform"
	Color          = "color"
	Fills          = "--fills"

	// TypographyRefID and TypographyRefFile link an inline to a shared
	// typography. They are carried as opaque values.
	TypographyRefID   = "--typography-ref-id"
	TypographyRefFile = "--typography-ref-file"
)

var (
	rootKeys      = []string{VerticalAlign}
	paragraphKeys = []string{TextAlign, Direction, TextIndent}
	inlineKeys    = []string{
		FontFamily, FontWeight, FontSize, FontStyle, FontID, FontVariantID,
		LineHeight, LetterSpacing, TextDecoration, TextTransform, Color, Fills,
		TypographyRefID, TypographyRefFile,
	}
)

// RootKeys returns the properties stored on the root.
func RootKeys() []string { return slices.Clone(rootKeys) }

// ParagraphKeys returns the properties stored on paragraphs.
func ParagraphKeys() []string { return slices.Clone(paragraphKeys) }

// InlineKeys returns the properties stored on inline runs.
func InlineKeys() []string { return slices.Clone(inlineKeys) }

// Map is a set of requested property values keyed by name.
// An empty value requests removal of the property.
type Map map[string]string

// Clone returns a copy of m.
func (m Map) Clone() Map {
	if m == nil {
		return Map{}
	}
	return maps.Clone(m)
}

// Only returns the subset of m whose keys are in keys.
func (m Map) Only(keys []string) Map {
	out := Map{}
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Style converts m into a dom style map. Empty values are dropped.
func (m Map) Style() *dom.Style {
	s := dom.NewStyle()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		s.Set(k, m[k], dom.PriorityNormal)
	}
	return s
}

// Defaults returns the engine-wide default styles.
func Defaults() Map {
	return Map{
		VerticalAlign:  "top",
		TextAlign:      "left",
		Direction:      "ltr",
		FontFamily:     "sourcesanspro",
		FontWeight:     "400",
		FontSize:       "14",
		FontStyle:      "normal",
		LineHeight:     "1.2",
		LetterSpacing:  "0",
		TextDecoration: "none",
		TextTransform:  "none",
		Color:          "#000000",
	}
}

// Apply sets the properties of styles whose names are in keys onto dst.
// It reports whether dst changed. Important properties already on dst are
// replaced, since an explicit request always wins over stored state.
func Apply(dst *dom.Style, styles Map, keys []string) bool {
	changed := false
	for _, k := range keys {
		v, ok := styles[k]
		if !ok {
			continue
		}
		if v == "" {
			if dst.Has(k) {
				dst.Remove(k)
				changed = true
			}
			continue
		}
		if p, ok := dst.Property(k); ok && p.Value == v && !p.Important() {
			continue
		}
		dst.Set(k, v, dom.PriorityNormal)
		changed = true
	}
	return changed
}

// Covers reports whether dst already holds every inline property requested
// by styles.
func Covers(dst *dom.Style, styles Map, keys []string) bool {
	for _, k := range keys {
		v, ok := styles[k]
		if !ok {
			continue
		}
		if dst.Get(k) != v {
			return false
		}
	}
	return true
}
