package style

import (
	"maps"
	"slices"

	"github.com/dshills/inkwell/internal/engine/dom"
)

// Record is an immutable snapshot of resolved style properties.
// The zero value is an empty record.
type Record struct {
	props map[string]string
}

// Compute resolves a record by layering defaults and then each layer in
// order. Later layers override earlier ones, except that an important
// property is only overridden by another important one. Nil layers are
// skipped.
func Compute(defaults Map, layers ...*dom.Style) Record {
	acc := defaults.Style()
	for _, l := range layers {
		acc.Merge(l)
	}
	return Record{props: acc.Map()}
}

// RecordOf builds a record from a plain map.
func RecordOf(m Map) Record {
	return Record{props: maps.Clone(map[string]string(m))}
}

// Get returns the value of the named property.
func (r Record) Get(name string) string { return r.props[name] }

// Has reports whether the named property is present.
func (r Record) Has(name string) bool {
	_, ok := r.props[name]
	return ok
}

// Len returns the number of properties.
func (r Record) Len() int { return len(r.props) }

// Names returns the property names in sorted order.
func (r Record) Names() []string {
	return slices.Sorted(maps.Keys(r.props))
}

// Map returns a copy of the record as a Map.
func (r Record) Map() Map {
	out := make(Map, len(r.props))
	maps.Copy(out, r.props)
	return out
}

// Inline returns a copy of the record restricted to inline properties.
func (r Record) Inline() Map {
	return r.Map().Only(inlineKeys)
}

// With returns a new record with the given values overlaid. Empty values
// remove properties.
func (r Record) With(m Map) Record {
	out := r.Map()
	for k, v := range m {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return Record{props: out}
}

// Equal reports whether both records hold the same values.
func (r Record) Equal(other Record) bool {
	return maps.Equal(r.props, other.props)
}
