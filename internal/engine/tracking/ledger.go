package tracking

import "github.com/dshills/inkwell/internal/engine/dom"

// MutationType categorizes a ledger entry.
type MutationType uint8

const (
	// MutationAdd indicates a node was inserted into the tree.
	MutationAdd MutationType = iota

	// MutationUpdate indicates a node's content or style changed.
	MutationUpdate

	// MutationRemove indicates a node left the tree.
	MutationRemove
)

// String returns the mutation type name.
func (t MutationType) String() string {
	switch t {
	case MutationAdd:
		return "add"
	case MutationUpdate:
		return "update"
	case MutationRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Mutation is a single ledger entry.
type Mutation struct {
	Type MutationType
	Node *dom.Node
}

// nodeSet is an insertion-ordered set of nodes.
type nodeSet struct {
	index map[*dom.Node]int
	nodes []*dom.Node
}

func newNodeSet() nodeSet {
	return nodeSet{index: make(map[*dom.Node]int)}
}

func (s *nodeSet) has(n *dom.Node) bool {
	_, ok := s.index[n]
	return ok
}

func (s *nodeSet) add(n *dom.Node) {
	if s.has(n) {
		return
	}
	s.index[n] = len(s.nodes)
	s.nodes = append(s.nodes, n)
}

func (s *nodeSet) delete(n *dom.Node) {
	i, ok := s.index[n]
	if !ok {
		return
	}
	delete(s.index, n)
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	for j := i; j < len(s.nodes); j++ {
		s.index[s.nodes[j]] = j
	}
}

func (s *nodeSet) list() []*dom.Node {
	out := make([]*dom.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Ledger accumulates the mutations of one command. It is not safe for
// concurrent use.
type Ledger struct {
	added   nodeSet
	updated nodeSet
	removed nodeSet
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		added:   newNodeSet(),
		updated: newNodeSet(),
		removed: newNodeSet(),
	}
}

// Add records that n was inserted. Re-adding a node removed earlier in the
// same command turns the pair into an update.
func (l *Ledger) Add(n *dom.Node) {
	if n == nil {
		return
	}
	if l.removed.has(n) {
		l.removed.delete(n)
		l.updated.add(n)
		return
	}
	l.updated.delete(n)
	l.added.add(n)
}

// Update records that n changed. Updates to nodes added or removed in the
// same command are already covered by those entries.
func (l *Ledger) Update(n *dom.Node) {
	if n == nil || l.added.has(n) || l.removed.has(n) {
		return
	}
	l.updated.add(n)
}

// Remove records that n left the tree. Removing a node added in the same
// command cancels both entries.
func (l *Ledger) Remove(n *dom.Node) {
	if n == nil {
		return
	}
	if l.added.has(n) {
		l.added.delete(n)
		return
	}
	l.updated.delete(n)
	l.removed.add(n)
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.added = newNodeSet()
	l.updated = newNodeSet()
	l.removed = newNodeSet()
}

// Added returns the added nodes in insertion order.
func (l *Ledger) Added() []*dom.Node { return l.added.list() }

// Updated returns the updated nodes in insertion order.
func (l *Ledger) Updated() []*dom.Node { return l.updated.list() }

// Removed returns the removed nodes in insertion order.
func (l *Ledger) Removed() []*dom.Node { return l.removed.list() }

// Len returns the total number of entries.
func (l *Ledger) Len() int {
	return len(l.added.nodes) + len(l.updated.nodes) + len(l.removed.nodes)
}

// IsEmpty reports whether nothing was recorded.
func (l *Ledger) IsEmpty() bool { return l.Len() == 0 }

// Mutations returns every entry: additions, then updates, then removals.
func (l *Ledger) Mutations() []Mutation {
	out := make([]Mutation, 0, l.Len())
	for _, n := range l.added.nodes {
		out = append(out, Mutation{Type: MutationAdd, Node: n})
	}
	for _, n := range l.updated.nodes {
		out = append(out, Mutation{Type: MutationUpdate, Node: n})
	}
	for _, n := range l.removed.nodes {
		out = append(out, Mutation{Type: MutationRemove, Node: n})
	}
	return out
}

// Snapshot returns a detached copy of the ledger.
func (l *Ledger) Snapshot() *Ledger {
	c := NewLedger()
	for _, n := range l.added.nodes {
		c.added.add(n)
	}
	for _, n := range l.updated.nodes {
		c.updated.add(n)
	}
	for _, n := range l.removed.nodes {
		c.removed.add(n)
	}
	return c
}
