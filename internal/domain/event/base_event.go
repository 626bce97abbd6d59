package event

import "time"

// BaseEvent is the common DomainEvent implementation embedded by
// concrete events.
type BaseEvent struct {
	eventType     string
	aggregateID   string
	aggregateType string
	occurredAt    time.Time
	metadata      Metadata
}

// NewBaseEvent creates a new base event stamped with the current time.
func NewBaseEvent(eventType, aggregateID, aggregateType string, metadata Metadata) BaseEvent {
	return BaseEvent{
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    time.Now(),
		metadata:      metadata,
	}
}

// EventType returns the event type.
func (e BaseEvent) EventType() string {
	return e.eventType
}

// AggregateID returns the aggregate ID.
func (e BaseEvent) AggregateID() string {
	return e.aggregateID
}

// AggregateType returns the aggregate type.
func (e BaseEvent) AggregateType() string {
	return e.aggregateType
}

// OccurredAt returns the time the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// Metadata returns the event metadata.
func (e BaseEvent) Metadata() Metadata {
	return e.metadata
}
