package selection

import "github.com/rivo/uniseg"

// clusterBefore returns the byte length of the grapheme cluster that ends
// at offset in s.
func clusterBefore(s string, offset int) int {
	rest := s[:offset]
	state := -1
	last := 0
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		last = len(cluster)
	}
	return last
}

// clusterAfter returns the byte length of the grapheme cluster that starts
// at offset in s.
func clusterAfter(s string, offset int) int {
	if offset >= len(s) {
		return 0
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s[offset:], -1)
	return len(cluster)
}
