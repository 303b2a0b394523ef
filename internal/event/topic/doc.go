// Package topic defines the dot-separated topics events are published
// under and the wildcard patterns subscribers match them with.
//
//	surface.change        debounced content change
//	surface.stylechange   the style at the caret changed
//	surface.needslayout   the host must re-measure
//
// A "*" segment matches exactly one segment and "**" matches any number,
// including none, so "surface.*" matches every surface topic above and
// "**" matches everything.
package topic
