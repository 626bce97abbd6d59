// Package event defines the domain event contract and shared event plumbing.
package event

import (
	"context"
	"time"
)

// DomainEvent represents a change that happened on an aggregate.
type DomainEvent interface {
	// EventType returns the event type
	EventType() string

	// AggregateID returns the aggregate ID
	AggregateID() string

	// AggregateType returns the aggregate type
	AggregateType() string

	// OccurredAt returns the time when the event occurred
	OccurredAt() time.Time

	// Metadata returns the event metadata
	Metadata() Metadata
}

// Publisher publishes integration payloads to a named topic.
// Publish must not return nil until the transport has durably accepted
// the message.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}
