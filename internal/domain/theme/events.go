package theme

import (
	"github.com/themery/themery/internal/domain/event"
)

// Theme event types.
const (
	EventTypeThemeCreated = "theme.created"
	EventTypeThemeUpdated = "theme.updated"

	// AggregateType identifies the theme aggregate in event envelopes.
	AggregateType = "theme"
)

// CreatedEvent is recorded when a theme is created.
// It snapshots the replicated fields at buffering time.
type CreatedEvent struct {
	event.BaseEvent

	Name string `json:"Name"`
}

// NewCreatedEvent creates a theme.created event for the given snapshot.
func NewCreatedEvent(t *Theme, metadata event.Metadata) *CreatedEvent {
	return &CreatedEvent{
		BaseEvent: event.NewBaseEvent(EventTypeThemeCreated, t.ID().String(), AggregateType, metadata),
		Name:      t.Name(),
	}
}

// UpdatedEvent is recorded when a theme is updated.
type UpdatedEvent struct {
	event.BaseEvent

	Name string `json:"Name"`
}

// NewUpdatedEvent creates a theme.updated event for the given snapshot.
func NewUpdatedEvent(t *Theme, metadata event.Metadata) *UpdatedEvent {
	return &UpdatedEvent{
		BaseEvent: event.NewBaseEvent(EventTypeThemeUpdated, t.ID().String(), AggregateType, metadata),
		Name:      t.Name(),
	}
}
