// Package integration defines the wire-level events exchanged between the
// theme service and its consumers, and the mapping from owner-side domain
// events onto them. The event set is closed: Created, Updated, Deleted.
package integration

import (
	"encoding/json"
	"fmt"

	"github.com/themery/themery/internal/domain/event"
	"github.com/themery/themery/internal/domain/theme"
	"github.com/themery/themery/internal/domain/uuid"
)

// One topic per event type. Consumer groups are per consuming service so
// that instances of one service compete for a message while distinct
// services each receive their own copy.
const (
	TopicThemeCreated = "theme.created"
	TopicThemeUpdated = "theme.updated"
	TopicThemeDeleted = "theme.deleted"
)

// Topics lists every theme topic, in no particular order.
func Topics() []string {
	return []string{TopicThemeCreated, TopicThemeUpdated, TopicThemeDeleted}
}

// ThemeCreated announces a new theme. The payload is the minimal
// projection contract: identity plus display name, nothing owner-private.
type ThemeCreated struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Topic returns the topic this event is published on.
func (ThemeCreated) Topic() string { return TopicThemeCreated }

// EntityID returns the theme ID the event is about.
func (e ThemeCreated) EntityID() uuid.UUID { return e.ID }

// ThemeUpdated announces a changed theme name.
type ThemeUpdated struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Topic returns the topic this event is published on.
func (ThemeUpdated) Topic() string { return TopicThemeUpdated }

// EntityID returns the theme ID the event is about.
func (e ThemeUpdated) EntityID() uuid.UUID { return e.ID }

// ThemeDeleted announces a removed theme.
type ThemeDeleted struct {
	ID uuid.UUID `json:"id"`
}

// Topic returns the topic this event is published on.
func (ThemeDeleted) Topic() string { return TopicThemeDeleted }

// EntityID returns the theme ID the event is about.
func (e ThemeDeleted) EntityID() uuid.UUID { return e.ID }

// Event is implemented by every integration event.
type Event interface {
	Topic() string
	EntityID() uuid.UUID
}

// FromDomainEvent maps a drained owner-side domain event to its
// integration event, copying only the replicated fields.
func FromDomainEvent(evt event.DomainEvent) (Event, error) {
	id, err := uuid.ParseUUID(evt.AggregateID())
	if err != nil {
		return nil, fmt.Errorf("invalid aggregate id %q: %w", evt.AggregateID(), err)
	}

	switch e := evt.(type) {
	case *theme.CreatedEvent:
		return ThemeCreated{ID: id, Name: e.Name}, nil
	case *theme.UpdatedEvent:
		return ThemeUpdated{ID: id, Name: e.Name}, nil
	default:
		return nil, fmt.Errorf("no integration mapping for domain event %q", evt.EventType())
	}
}

// Encode serializes an integration event payload.
func Encode(evt Event) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", evt.Topic(), err)
	}
	return data, nil
}

// Decode deserializes a payload received on the given topic. Unknown
// topics are an error so that malformed deliveries surface instead of
// being silently dropped.
func Decode(topic string, payload []byte) (Event, error) {
	switch topic {
	case TopicThemeCreated:
		var e ThemeCreated
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s payload: %w", topic, err)
		}
		return e, nil
	case TopicThemeUpdated:
		var e ThemeUpdated
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s payload: %w", topic, err)
		}
		return e, nil
	case TopicThemeDeleted:
		var e ThemeDeleted
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s payload: %w", topic, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown integration topic %q", topic)
	}
}
