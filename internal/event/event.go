package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/inkwell/internal/event/topic"
)

// Event is a published notification. Events are values and are not
// modified after publishing.
type Event[T any] struct {
	Type     topic.Topic
	Payload  T
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	// ID is unique per event.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source names the publisher.
	Source string

	// CorrelationID groups the events of one editing session.
	CorrelationID string
}

// NewEvent creates an event stamped with a fresh ID and the current time.
func NewEvent[T any](t topic.Topic, payload T, source string) Event[T] {
	return NewEventWithMetadata(t, payload, Metadata{Source: source})
}

// NewEventWithMetadata creates an event, filling in a missing ID or
// timestamp.
func NewEventWithMetadata[T any](t topic.Topic, payload T, meta Metadata) Event[T] {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	return Event[T]{Type: t, Payload: payload, Metadata: meta}
}

// EventTopic implements TopicProvider.
func (e Event[T]) EventTopic() topic.Topic { return e.Type }

// EventMetadata implements MetadataProvider.
func (e Event[T]) EventMetadata() Metadata { return e.Metadata }

// WithCorrelation returns a copy of e with the correlation ID set.
func (e Event[T]) WithCorrelation(id string) Event[T] {
	e.Metadata.CorrelationID = id
	return e
}

// TopicProvider is implemented by every publishable value.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// MetadataProvider is implemented by values that carry metadata.
type MetadataProvider interface {
	EventMetadata() Metadata
}
