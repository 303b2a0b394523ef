// Package selection implements the selection controller, the state
// machine at the center of the editing engine.
//
// A Controller owns the logical caret or range over a document tree and
// mirrors it to and from the host's native selection. It infers the style
// newly typed text would take and implements every structural editing
// command (insertion, deletion, paragraph split and merge, paste and style
// application) in terms of the content, traverse and tracking packages.
//
// While the surface has lost input focus the host selection is not
// reliable, so SaveSelection snapshots it; all accessors prefer the
// snapshot while one is held and commands update it in place.
//
// Every command records the nodes it adds, updates and removes in the
// controller's ledger and leaves the tree satisfying the content
// package's invariants with the caret on a text or line-break leaf.
package selection
