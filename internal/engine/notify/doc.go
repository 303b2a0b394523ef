// Package notify coalesces bursts of edits into a single change
// notification.
//
// A Notifier either defers the notification until a quiet period has
// elapsed (NotifyDebounced) or delivers it right away (NotifyImmediately).
// Disposing a notifier flushes a pending notification instead of dropping
// it. Time comes from a clockwork.Clock so tests can drive it with a fake
// clock.
package notify
