// Package dom provides the host tree and host selection primitives the
// editing engine is built on.
//
// The package models just enough of a document object model for a
// rich-text surface: element and text nodes linked through parent and
// sibling pointers, a per-element style property map with an importance
// flag, and a mutable anchor/focus selection that notifies listeners when
// it moves.
//
// # Nodes
//
// Nodes are created detached and attached with AppendChild, InsertBefore,
// InsertAfter, Before, After, ReplaceWith or ReplaceChildren. Inserting a
// node that already has a parent moves it.
//
//	root := dom.NewElement("div")
//	p := dom.NewElement("div")
//	root.AppendChild(p)
//	p.AppendChild(dom.NewText("hello"))
//
// # Selection
//
// Selection is the interface the engine consumes. MemorySelection is an
// in-memory implementation suitable for headless use and tests.
//
// The package is not safe for concurrent use; callers serialize access.
package dom
