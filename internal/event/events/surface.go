package events

import (
	"github.com/dshills/inkwell/internal/engine/dom"
	"github.com/dshills/inkwell/internal/engine/style"
	"github.com/dshills/inkwell/internal/event/topic"
)

// Surface topics.
const (
	// TopicChange is published, debounced, after the content changed.
	TopicChange topic.Topic = "surface.change"

	// TopicStyleChange is published when the style at the caret changed.
	TopicStyleChange topic.Topic = "surface.stylechange"

	// TopicNeedsLayout is published after every successful mutation.
	TopicNeedsLayout topic.Topic = "surface.needslayout"

	// TopicAll matches every surface topic.
	TopicAll topic.Topic = "surface.*"
)

// Change is the payload of TopicChange.
type Change struct {
	// SessionID identifies the surface that changed.
	SessionID string
}

// StyleChange is the payload of TopicStyleChange.
type StyleChange struct {
	SessionID string
	Style     style.Record
}

// NeedsLayout is the payload of TopicNeedsLayout. The node lists are the
// coalesced mutations of one command.
type NeedsLayout struct {
	SessionID string
	Added     []*dom.Node
	Updated   []*dom.Node
	Removed   []*dom.Node

	// Full asks the host to lay out the whole document.
	Full bool
}
