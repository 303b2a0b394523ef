package dom

import (
	"strconv"
	"strings"
)

// Priority marks a style property as important. Important properties
// survive a Merge with a non-important value for the same name.
type Priority uint8

const (
	// PriorityNormal is the default priority.
	PriorityNormal Priority = iota

	// PriorityImportant is the "!important" priority.
	PriorityImportant
)

// Property is a single style property value.
type Property struct {
	Value    string
	Priority Priority
}

// Important reports whether the property carries the important flag.
func (p Property) Important() bool { return p.Priority == PriorityImportant }

// Style is an insertion-ordered style property map.
type Style struct {
	props map[string]Property
	order []string
}

// NewStyle creates an empty style map.
func NewStyle() *Style {
	return &Style{props: make(map[string]Property)}
}

// Len returns the number of properties.
func (s *Style) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Has reports whether the named property is set.
func (s *Style) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.props[name]
	return ok
}

// Get returns the value of the named property.
func (s *Style) Get(name string) string {
	if s == nil {
		return ""
	}
	return s.props[name].Value
}

// Property returns the full property, including its priority.
func (s *Style) Property(name string) (Property, bool) {
	if s == nil {
		return Property{}, false
	}
	p, ok := s.props[name]
	return p, ok
}

// Number parses the named property as a number. Units such as "px" are
// ignored. The second result is false when the property is missing or not
// numeric.
func (s *Style) Number(name string) (float64, bool) {
	v := strings.TrimSpace(s.Get(name))
	if v == "" {
		return 0, false
	}
	v = strings.TrimRightFunc(v, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Set sets the named property. An empty value removes it.
func (s *Style) Set(name, value string, priority Priority) {
	if value == "" {
		s.Remove(name)
		return
	}
	if _, ok := s.props[name]; !ok {
		s.order = append(s.order, name)
	}
	s.props[name] = Property{Value: value, Priority: priority}
}

// SetNumber sets the named property to a numeric value.
func (s *Style) SetNumber(name string, value float64, priority Priority) {
	s.Set(name, strconv.FormatFloat(value, 'f', -1, 64), priority)
}

// Remove deletes the named property.
func (s *Style) Remove(name string) {
	if _, ok := s.props[name]; !ok {
		return
	}
	delete(s.props, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear removes every property.
func (s *Style) Clear() {
	s.props = make(map[string]Property)
	s.order = nil
}

// Names returns the property names in insertion order.
func (s *Style) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Map returns the property values keyed by name.
func (s *Style) Map() map[string]string {
	out := make(map[string]string, s.Len())
	if s == nil {
		return out
	}
	for name, p := range s.props {
		out[name] = p.Value
	}
	return out
}

// Clone returns a deep copy of s.
func (s *Style) Clone() *Style {
	c := NewStyle()
	if s == nil {
		return c
	}
	for _, name := range s.order {
		c.order = append(c.order, name)
		c.props[name] = s.props[name]
	}
	return c
}

// Equal reports whether both maps hold the same properties with the same
// values and priorities, ignoring order.
func (s *Style) Equal(other *Style) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s == nil {
		return true
	}
	for name, p := range s.props {
		q, ok := other.props[name]
		if !ok || p != q {
			return false
		}
	}
	return true
}

// Merge copies the properties of other into s. An incoming property
// replaces an existing one unless the existing one is important and the
// incoming one is not.
func (s *Style) Merge(other *Style) {
	if other == nil {
		return
	}
	for _, name := range other.order {
		in := other.props[name]
		if cur, ok := s.props[name]; ok && cur.Important() && !in.Important() {
			continue
		}
		s.Set(name, in.Value, in.Priority)
	}
}

// String renders the map as a CSS declaration list.
func (s *Style) String() string {
	if s.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for i, name := range s.order {
		if i > 0 {
			sb.WriteString("; ")
		}
		p := s.props[name]
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(p.Value)
		if p.Important() {
			sb.WriteString(" !important")
		}
	}
	return sb.String()
}

// ParseStyle parses a CSS declaration list such as the value of an HTML
// style attribute. Malformed declarations are skipped.
func ParseStyle(decl string) *Style {
	s := NewStyle()
	for _, part := range strings.Split(decl, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		priority := PriorityNormal
		if v, found := strings.CutSuffix(value, "!important"); found {
			value = strings.TrimSpace(v)
			priority = PriorityImportant
		}
		s.Set(name, value, priority)
	}
	return s
}
