package dom

import (
	"strings"
	"sync/atomic"
)

// Kind distinguishes element nodes from text nodes.
type Kind uint8

const (
	// KindElement is a node that may carry attributes, a style and children.
	KindElement Kind = iota

	// KindText is a leaf node carrying character data.
	KindText
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

var lastID atomic.Uint64

// Node is a node of the host tree.
// Children are kept in a doubly linked list so sibling navigation and
// insertion next to a known node are constant time.
type Node struct {
	id    uint64
	kind  Kind
	tag   string
	data  string
	attrs map[string]string
	style *Style

	parent     *Node
	firstChild *Node
	lastChild  *Node
	prev       *Node
	next       *Node
	count      int
}

// NewElement creates a detached element node with the given tag.
func NewElement(tag string) *Node {
	return &Node{
		id:    lastID.Add(1),
		kind:  KindElement,
		tag:   tag,
		style: NewStyle(),
	}
}

// NewText creates a detached text node.
func NewText(data string) *Node {
	return &Node{
		id:   lastID.Add(1),
		kind: KindText,
		data: data,
	}
}

// ID returns a process-unique identifier for the node.
func (n *Node) ID() uint64 { return n.id }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Tag returns the element tag, or "#text" for text nodes.
func (n *Node) Tag() string {
	if n.kind == KindText {
		return "#text"
	}
	return n.tag
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool { return n != nil && n.kind == KindElement }

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n != nil && n.kind == KindText }

// Data returns the character data of a text node.
func (n *Node) Data() string { return n.data }

// SetData replaces the character data of a text node.
func (n *Node) SetData(data string) {
	if n.kind == KindText {
		n.data = data
	}
}

// Len returns the length of the node in offset units: bytes for text
// nodes, children for elements.
func (n *Node) Len() int {
	if n.kind == KindText {
		return len(n.data)
	}
	return n.count
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) string {
	return n.attrs[name]
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.attrs[name]
	return ok
}

// SetAttr sets an attribute on an element node.
func (n *Node) SetAttr(name, value string) {
	if n.kind != KindElement {
		return
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
}

// RemoveAttr removes an attribute.
func (n *Node) RemoveAttr(name string) {
	delete(n.attrs, name)
}

// Style returns the element's style map. Text nodes return nil.
func (n *Node) Style() *Style { return n.style }

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// FirstChild returns the first child.
func (n *Node) FirstChild() *Node { return n.firstChild }

// LastChild returns the last child.
func (n *Node) LastChild() *Node { return n.lastChild }

// NextSibling returns the next sibling.
func (n *Node) NextSibling() *Node { return n.next }

// PrevSibling returns the previous sibling.
func (n *Node) PrevSibling() *Node { return n.prev }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return n.count }

// HasChildren reports whether n has at least one child.
func (n *Node) HasChildren() bool { return n.firstChild != nil }

// Children returns a snapshot of the children.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, n.count)
	for c := n.firstChild; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}

// ChildAt returns the child at index i, or nil.
func (n *Node) ChildAt(i int) *Node {
	if i < 0 || i >= n.count {
		return nil
	}
	c := n.firstChild
	for ; i > 0; i-- {
		c = c.next
	}
	return c
}

// Index returns the position of n among its siblings, or -1 when detached.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	i := 0
	for c := n.parent.firstChild; c != nil; c = c.next {
		if c == n {
			return i
		}
		i++
	}
	return -1
}

// Top returns the topmost ancestor of n (n itself when detached).
func (n *Node) Top() *Node {
	t := n
	for t.parent != nil {
		t = t.parent
	}
	return t
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for o := other; o != nil; o = o.parent {
		if o == n {
			return true
		}
	}
	return false
}

// TextContent returns the concatenated data of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.kind == KindText {
		return n.data
	}
	var sb strings.Builder
	var walk func(*Node)
	walk = func(m *Node) {
		for c := m.firstChild; c != nil; c = c.next {
			if c.kind == KindText {
				sb.WriteString(c.data)
			} else {
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}

// Clone copies n. Attributes and style are always copied; children are
// copied only when deep is set. The clone is detached.
func (n *Node) Clone(deep bool) *Node {
	var c *Node
	if n.kind == KindText {
		c = NewText(n.data)
	} else {
		c = NewElement(n.tag)
		for k, v := range n.attrs {
			c.SetAttr(k, v)
		}
		c.style = n.style.Clone()
	}
	if deep {
		for child := n.firstChild; child != nil; child = child.next {
			c.AppendChild(child.Clone(true))
		}
	}
	return c
}

// checkInsert panics on insertions that can never be valid.
// The panics mirror html.Node: they indicate a programming error.
func (n *Node) checkInsert(child *Node) {
	if n.kind == KindText {
		panic(ErrHierarchy.Error() + ": text nodes cannot have children")
	}
	if child.Contains(n) {
		panic(ErrHierarchy.Error() + ": node cannot contain itself")
	}
}

// AppendChild adds child as the last child of n, detaching it first.
func (n *Node) AppendChild(child *Node) {
	n.InsertBefore(child, nil)
}

// InsertBefore inserts child immediately before ref. A nil ref appends.
func (n *Node) InsertBefore(child, ref *Node) {
	if child == ref {
		return
	}
	n.checkInsert(child)
	if ref != nil && ref.parent != n {
		panic(ErrNotChild.Error())
	}
	child.Remove()

	child.parent = n
	if ref == nil {
		child.prev = n.lastChild
		if n.lastChild != nil {
			n.lastChild.next = child
		} else {
			n.firstChild = child
		}
		n.lastChild = child
	} else {
		child.prev = ref.prev
		child.next = ref
		if ref.prev != nil {
			ref.prev.next = child
		} else {
			n.firstChild = child
		}
		ref.prev = child
	}
	n.count++
}

// InsertAfter inserts child immediately after ref. A nil ref prepends.
func (n *Node) InsertAfter(child, ref *Node) {
	if ref == nil {
		n.InsertBefore(child, n.firstChild)
		return
	}
	if ref.parent != n {
		panic(ErrNotChild.Error())
	}
	n.InsertBefore(child, ref.next)
}

// Prepend inserts nodes, in order, before the first child.
func (n *Node) Prepend(nodes ...*Node) {
	ref := n.firstChild
	for _, c := range nodes {
		n.InsertBefore(c, ref)
	}
}

// Append inserts nodes, in order, after the last child.
func (n *Node) Append(nodes ...*Node) {
	for _, c := range nodes {
		n.AppendChild(c)
	}
}

// Before inserts nodes, in order, as previous siblings of n.
func (n *Node) Before(nodes ...*Node) {
	if n.parent == nil {
		return
	}
	p := n.parent
	for _, c := range nodes {
		p.InsertBefore(c, n)
	}
}

// After inserts nodes, in order, as next siblings of n.
func (n *Node) After(nodes ...*Node) {
	if n.parent == nil {
		return
	}
	p := n.parent
	ref := n.next
	for _, c := range nodes {
		if c == ref {
			ref = ref.next
			continue
		}
		p.InsertBefore(c, ref)
	}
}

// Remove detaches n from its parent. Removing a detached node is a no-op.
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		p.firstChild = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		p.lastChild = n.prev
	}
	n.parent, n.prev, n.next = nil, nil, nil
	p.count--
}

// ReplaceWith replaces n with nodes in its parent. nodes must not include n.
func (n *Node) ReplaceWith(nodes ...*Node) {
	if n.parent == nil {
		return
	}
	n.Before(nodes...)
	n.Remove()
}

// ReplaceChildren removes all children of n and appends nodes.
func (n *Node) ReplaceChildren(nodes ...*Node) {
	for c := n.firstChild; c != nil; {
		next := c.next
		keep := false
		for _, m := range nodes {
			if m == c {
				keep = true
				break
			}
		}
		if !keep {
			c.Remove()
		}
		c = next
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
}

// Compare returns -1 when n precedes other in document order, 1 when it
// follows, and 0 when they are the same node. An ancestor precedes its
// descendants. Nodes in different trees compare as 0.
func (n *Node) Compare(other *Node) int {
	if n == other {
		return 0
	}
	a := ancestry(n)
	b := ancestry(other)
	if a[0] != b[0] {
		return 0
	}
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	switch {
	case i == len(a):
		return -1
	case i == len(b):
		return 1
	}
	for s := a[i].next; s != nil; s = s.next {
		if s == b[i] {
			return -1
		}
	}
	return 1
}

// ancestry returns the chain from the topmost ancestor down to n.
func ancestry(n *Node) []*Node {
	var chain []*Node
	for m := n; m != nil; m = m.parent {
		chain = append(chain, m)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
