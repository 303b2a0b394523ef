package topic

import "strings"

// Topic is a dot-separated event name or subscription pattern.
type Topic string

// Pattern segments and the separator.
const (
	Any       = "*"
	AnyDepth  = "**"
	Separator = "."
)

// String returns the topic as a string.
func (t Topic) String() string { return string(t) }

// Segments splits the topic on the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsPattern reports whether t contains a wildcard segment.
func (t Topic) IsPattern() bool {
	for _, seg := range t.Segments() {
		if seg == Any || seg == AnyDepth {
			return true
		}
	}
	return false
}

// IsValid reports whether t is non-empty and has no empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches reports whether t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	return match(t.Segments(), pattern.Segments())
}

func match(name, pattern []string) bool {
	for len(pattern) > 0 {
		switch head := pattern[0]; {
		case head == AnyDepth:
			for i := 0; i <= len(name); i++ {
				if match(name[i:], pattern[1:]) {
					return true
				}
			}
			return false
		case len(name) == 0:
			return false
		case head == Any || head == name[0]:
			name, pattern = name[1:], pattern[1:]
		default:
			return false
		}
	}
	return len(name) == 0
}
