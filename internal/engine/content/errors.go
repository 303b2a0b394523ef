package content

import (
	"errors"
	"fmt"

	"github.com/dshills/inkwell/internal/engine/dom"
)

// Errors returned by document model operations.
var (
	// ErrInvalidStructure indicates a node of the wrong kind or a container
	// without the children it requires.
	ErrInvalidStructure = errors.New("invalid document structure")

	// ErrEmptyText indicates an attempt to create an empty text leaf.
	ErrEmptyText = errors.New("text leaf cannot be empty")

	// ErrOffsetOutOfRange indicates an offset outside a leaf, or one that
	// does not fall on a character boundary.
	ErrOffsetOutOfRange = errors.New("offset out of range")
)

// ValidationError describes a structural-validation failure.
type ValidationError struct {
	// Node is the node that failed validation (may be nil).
	Node *dom.Node

	// Path locates Node from the root when known.
	Path dom.Path

	// Reason describes the failure.
	Reason string

	// Err is the sentinel the failure wraps.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != nil {
		return fmt.Sprintf("%v at %s: %s", e.Err, e.Path, e.Reason)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Reason)
}

// Unwrap returns the underlying sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(n *dom.Node, format string, args ...any) error {
	return &ValidationError{Node: n, Reason: fmt.Sprintf(format, args...), Err: ErrInvalidStructure}
}
