package dom

import "errors"

// Errors returned by tree operations.
var (
	// ErrHierarchy indicates an insertion that would create a cycle or
	// attach a child to a text node.
	ErrHierarchy = errors.New("hierarchy request error")

	// ErrNotChild indicates a reference node is not a child of the target.
	ErrNotChild = errors.New("node is not a child")

	// ErrPathNotFound indicates a path does not resolve to a node.
	ErrPathNotFound = errors.New("path not found")
)
