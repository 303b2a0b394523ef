// Package content implements the document model of the editing engine.
//
// A document is a small tree with four kinds of node:
//
//	root       one per document, holds paragraphs
//	paragraph  a block, holds one or more inline runs
//	inline     a styled span holding exactly one leaf
//	leaf       a non-empty text node or a line break
//
// An inline whose leaf is a line break is empty; it has length 0 and is
// how a line without text is represented. Constructors validate their
// children and return a *ValidationError when handed the wrong kinds.
// The split and merge functions restore the invariants before returning.
package content
