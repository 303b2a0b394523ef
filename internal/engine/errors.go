package engine

import (
	"errors"
	"fmt"
)

// Errors returned by surface operations.
var (
	// ErrClosed indicates the surface was used after Close.
	ErrClosed = errors.New("surface is closed")

	// ErrCommandPanic indicates a command panicked. The panic was
	// recovered and the command rolled back.
	ErrCommandPanic = errors.New("command panicked")

	// ErrInvalidDocument indicates a document or root that violates the
	// document model invariants.
	ErrInvalidDocument = errors.New("invalid document")
)

// CommandError reports an aborted command.
type CommandError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error { return e.Err }
