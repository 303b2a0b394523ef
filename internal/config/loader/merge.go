package loader

import "strings"

// DeepMerge overlays src onto dst and returns dst. Nested maps merge key
// by key; any other value in src replaces the one in dst. A nil dst is
// allocated.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if into, ok := dst[k].(map[string]any); ok {
				dst[k] = DeepMerge(into, sub)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

// Get returns the value at a dotted path such as "log.level".
func Get(settings map[string]any, path string) (any, bool) {
	node := settings
	for {
		head, rest, nested := strings.Cut(path, ".")
		v, ok := node[head]
		if !ok {
			return nil, false
		}
		if !nested {
			return v, true
		}
		if node, ok = v.(map[string]any); !ok {
			return nil, false
		}
		path = rest
	}
}

// set stores value at a dotted path, creating intermediate maps.
func set(settings map[string]any, path string, value any) {
	node := settings
	for {
		head, rest, nested := strings.Cut(path, ".")
		if !nested {
			node[head] = value
			return
		}
		next, ok := node[head].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[head] = next
		}
		node, path = next, rest
	}
}
