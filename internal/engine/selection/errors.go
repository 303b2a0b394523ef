package selection

import (
	"errors"
	"fmt"

	"github.com/dshills/inkwell/internal/engine/dom"
)

// Errors returned by controller operations.
var (
	// ErrUnresolvableSelection indicates a command needed a concrete caret
	// position but the selection does not resolve to one.
	ErrUnresolvableSelection = errors.New("unresolvable selection")

	// ErrDetachedNode indicates an attempt to select a node that is not
	// part of the document tree.
	ErrDetachedNode = errors.New("node is not attached to the document")

	// ErrOffsetOutOfRange indicates a document offset past the end.
	ErrOffsetOutOfRange = errors.New("document offset out of range")
)

// SelectionError reports a selection failure for an operation.
type SelectionError struct {
	Op     string
	Node   *dom.Node
	Offset int
	Err    error
}

// Error implements the error interface.
func (e *SelectionError) Error() string {
	if e.Node == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s at %d)", e.Op, e.Err, e.Node.Tag(), e.Offset)
}

// Unwrap returns the underlying sentinel.
func (e *SelectionError) Unwrap() error { return e.Err }

func unresolvable(op string, p dom.Position) error {
	return &SelectionError{Op: op, Node: p.Node, Offset: p.Offset, Err: ErrUnresolvableSelection}
}
