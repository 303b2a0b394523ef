package traverse

import (
	"fmt"

	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/dom"
)

// Walker walks the leaves under a root.
type Walker struct {
	root    *dom.Node
	current *dom.Node
	limits  Limits
}

// Option configures a Walker.
type Option func(*Walker)

// WithLimits sets the guard limits used for every step.
func WithLimits(l Limits) Option {
	return func(w *Walker) {
		w.limits = l
	}
}

// New creates a walker positioned on the first leaf under root.
func New(root *dom.Node, opts ...Option) *Walker {
	w := &Walker{root: root, limits: DefaultLimits()}
	for _, opt := range opts {
		opt(w)
	}
	w.current = firstLeaf(root, nil)
	return w
}

// Root returns the walker's root.
func (w *Walker) Root() *dom.Node { return w.root }

// Current returns the leaf the walker is on, or nil for an empty tree.
func (w *Walker) Current() *dom.Node { return w.current }

// Seek positions the walker on n. A non-leaf n is resolved to its first
// leaf.
func (w *Walker) Seek(n *dom.Node) {
	if n != nil && !content.IsLeaf(n) {
		n = firstLeaf(n, nil)
	}
	w.current = n
}

// NextNode advances to the next leaf, skipping any node in exclude and its
// subtree. It returns nil at the end of the tree, leaving the walker where
// it was.
func (w *Walker) NextNode(exclude ...*dom.Node) (*dom.Node, error) {
	return w.step("next leaf", true, exclude)
}

// PreviousNode moves to the previous leaf, skipping any node in exclude
// and its subtree. It returns nil at the start of the tree.
func (w *Walker) PreviousNode(exclude ...*dom.Node) (*dom.Node, error) {
	return w.step("previous leaf", false, exclude)
}

// Collect returns the leaves from `from` through `to`, inclusive, in
// document order.
func (w *Walker) Collect(from, to *dom.Node) ([]*dom.Node, error) {
	w.Seek(from)
	if w.current == nil {
		return nil, fmt.Errorf("%w: start is not a leaf", ErrEndNotReached)
	}
	out := []*dom.Node{w.current}
	g := NewGuard("collect leaves", w.limits)
	for w.current != to {
		if err := g.Step(); err != nil {
			return nil, err
		}
		n, err := w.NextNode()
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, ErrEndNotReached
		}
		out = append(out, n)
	}
	return out, nil
}

func (w *Walker) step(op string, forward bool, exclude []*dom.Node) (*dom.Node, error) {
	if w.current == nil {
		return nil, nil
	}
	g := NewGuard(op, w.limits)
	n := w.current
	for n != nil && n != w.root {
		if err := g.Step(); err != nil {
			return nil, err
		}
		sib := sibling(n, forward)
		for sib != nil && excluded(sib, exclude) {
			if err := g.Step(); err != nil {
				return nil, err
			}
			sib = sibling(sib, forward)
		}
		if sib == nil {
			n = n.Parent()
			continue
		}
		var leaf *dom.Node
		if forward {
			leaf = firstLeaf(sib, exclude)
		} else {
			leaf = lastLeaf(sib, exclude)
		}
		if leaf != nil {
			w.current = leaf
			return leaf, nil
		}
		n = sib
	}
	return nil, nil
}

func sibling(n *dom.Node, forward bool) *dom.Node {
	if forward {
		return n.NextSibling()
	}
	return n.PrevSibling()
}

func excluded(n *dom.Node, exclude []*dom.Node) bool {
	for _, e := range exclude {
		if e == n {
			return true
		}
	}
	return false
}

func firstLeaf(n *dom.Node, exclude []*dom.Node) *dom.Node {
	if n == nil || excluded(n, exclude) {
		return nil
	}
	if content.IsLeaf(n) {
		return n
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if l := firstLeaf(c, exclude); l != nil {
			return l
		}
	}
	return nil
}

func lastLeaf(n *dom.Node, exclude []*dom.Node) *dom.Node {
	if n == nil || excluded(n, exclude) {
		return nil
	}
	if content.IsLeaf(n) {
		return n
	}
	for c := n.LastChild(); c != nil; c = c.PrevSibling() {
		if l := lastLeaf(c, exclude); l != nil {
			return l
		}
	}
	return nil
}
