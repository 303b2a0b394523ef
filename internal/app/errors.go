package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrInvalidStep indicates a script step that names no action or more
	// than one.
	ErrInvalidStep = errors.New("invalid script step")

	// ErrUnknownFormat indicates an unsupported output format.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrNoScript indicates watch mode was requested without a script.
	ErrNoScript = errors.New("no script to watch")
)

// StepError describes a step that could not be replayed.
type StepError struct {
	Index int    // zero-based step index
	Kind  string // step action
	Err   error  // underlying error
}

func (e *StepError) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind != "" {
		return fmt.Sprintf("step %d (%s): %v", e.Index, e.Kind, e.Err)
	}
	return fmt.Sprintf("step %d: %v", e.Index, e.Err)
}

func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FileError represents a script file error.
type FileError struct {
	Op   string // "read" or "parse"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
