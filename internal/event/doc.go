// Package event carries notifications out of the editing surface.
//
// Events are typed values, Event[T], published under a dot-separated
// topic (see package topic). A Bus delivers each event synchronously, in
// priority then subscription order, to every subscription whose pattern
// matches the topic. A failing or panicking handler never stops delivery
// to the others; its error is returned from Publish.
//
// The topics and payloads the surface publishes live in package events.
package event
