// Package tracking records the structural changes made by one editing
// command.
//
// A Ledger accumulates added, updated and removed nodes while a command
// runs. The host reads it once the command returns to decide which nodes
// need to be measured or rendered again, then discards it.
//
//	l := tracking.NewLedger()
//	l.Add(newParagraph)
//	l.Update(inline)
//	for _, n := range l.Updated() { ... }
//
// Entries coalesce: a node added and then removed within the same command
// leaves no trace, and updates to added or removed nodes are folded into
// those entries.
package tracking
