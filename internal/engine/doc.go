// Package engine provides the editing surface for Inkwell documents.
//
// A Surface ties the document tree, the selection controller, the
// mutation ledger and the change notifier together behind a single API
// consumed by a host editing surface. The host forwards its input events
// to HandleInput; the surface maps each one onto an editing command and
// publishes what happened on an event bus.
//
// # Architecture
//
// The surface is built on several sub-packages:
//
//   - dom: in-memory host tree, style maps and the selection primitive
//   - style: style keys, engine defaults and the inferred caret style
//   - content: document model invariants, constructors and import/export
//   - traverse: leaf-order traversal bounded by a safety guard
//   - tracking: the per-command mutation ledger
//   - notify: debounced and immediate change notification
//   - selection: the selection controller and every editing command
//   - paste: normalization of pasted plain text and HTML
//
// # Events
//
// Three topics are published on the surface's bus (see package
// internal/event/events):
//
//   - surface.needslayout after every command that touched the tree,
//     carrying the ledger contents and a full-layout hint
//   - surface.stylechange when the inferred caret style changed
//   - surface.change, debounced, after content was edited, and
//     immediately when the surface is blurred or closed
//
// # Atomicity
//
// Every command runs against a snapshot of the tree and the selection.
// When a command fails, or panics, the snapshot is restored, the ledger
// is discarded and no event is published, so the state before the
// command remains authoritative.
//
// # Basic Usage
//
//	s, err := engine.New(engine.WithDocument(content.NewDocument("Hello")))
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	s.OnNeedsLayout(func(ev events.NeedsLayout) { relayout(ev) })
//
//	_ = s.SelectRange(5, 5)
//	_, err = s.HandleInput(engine.InputEvent{Type: engine.InputInsertText, Data: ", World!"})
//
//	s.Text() // "Hello, World!"
//
// # Thread Safety
//
// Surface methods are serialized by a mutex. Events are published after
// the mutex is released, so handlers may call back into the surface. The
// host selection must only be moved from the goroutine driving the
// surface, as a native editing surface would.
package engine
