package dom

import "fmt"

// Path locates a node by the child indices leading to it from a root.
// The empty path is the root itself.
type Path []int

// PathOf returns the path from root to n. The second result is false when
// n is not inside root.
func PathOf(root, n *Node) (Path, bool) {
	var rev []int
	m := n
	for m != nil && m != root {
		rev = append(rev, m.Index())
		m = m.parent
	}
	if m != root {
		return nil, false
	}
	p := make(Path, len(rev))
	for i := range rev {
		p[i] = rev[len(rev)-1-i]
	}
	return p, true
}

// Resolve walks path from root.
func (p Path) Resolve(root *Node) (*Node, error) {
	n := root
	for depth, i := range p {
		c := n.ChildAt(i)
		if c == nil {
			return nil, fmt.Errorf("%w: index %d at depth %d", ErrPathNotFound, i, depth)
		}
		n = c
	}
	return n, nil
}

// String renders the path as slash-separated indices.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	s := ""
	for _, i := range p {
		s += fmt.Sprintf("/%d", i)
	}
	return s
}
