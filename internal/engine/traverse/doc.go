// Package traverse walks the leaves of a document tree.
//
// A Walker moves forward and backward over text and line-break leaves
// across inline and paragraph boundaries. Every walk is bounded by a Guard
// combining a wall-clock limit and a step budget; a tripped guard means
// the tree is malformed and is reported as a *GuardError.
package traverse
