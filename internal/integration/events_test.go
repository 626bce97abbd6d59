package integration_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themery/themery/internal/domain/event"
	"github.com/themery/themery/internal/domain/theme"
	"github.com/themery/themery/internal/domain/uuid"
	"github.com/themery/themery/internal/integration"
)

func newTestTheme(t *testing.T) *theme.Theme {
	t.Helper()

	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	th, err := theme.NewTheme("Autumn Campaign", 7, "AC", start, end, "tester", event.NewMetadata("", ""))
	require.NoError(t, err)

	return th
}

func TestFromDomainEvent_Created(t *testing.T) {
	th := newTestTheme(t)

	events := th.UncommittedEvents()
	require.Len(t, events, 1)

	out, err := integration.FromDomainEvent(events[0])
	require.NoError(t, err)

	created, ok := out.(integration.ThemeCreated)
	require.True(t, ok)
	assert.Equal(t, th.ID(), created.ID)
	assert.Equal(t, "Autumn Campaign", created.Name)
	assert.Equal(t, integration.TopicThemeCreated, created.Topic())
}

func TestFromDomainEvent_Updated(t *testing.T) {
	th := newTestTheme(t)
	th.ClearEvents()

	err := th.Update("Winter Campaign", 8, "WC", th.StartDate(), th.EndDate(), "tester", event.NewMetadata("", ""))
	require.NoError(t, err)

	events := th.UncommittedEvents()
	require.Len(t, events, 1)

	out, err := integration.FromDomainEvent(events[0])
	require.NoError(t, err)

	updated, ok := out.(integration.ThemeUpdated)
	require.True(t, ok)
	assert.Equal(t, th.ID(), updated.ID)
	assert.Equal(t, "Winter Campaign", updated.Name)
	assert.Equal(t, integration.TopicThemeUpdated, updated.Topic())
}

func TestFromDomainEvent_UnknownType(t *testing.T) {
	evt := event.NewBaseEvent("theme.renumbered", uuid.NewUUID().String(), theme.AggregateType, event.NewMetadata("", ""))

	_, err := integration.FromDomainEvent(&evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no integration mapping")
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	id := uuid.NewUUID()

	tests := []struct {
		name string
		evt  integration.Event
	}{
		{"created", integration.ThemeCreated{ID: id, Name: "Spring"}},
		{"updated", integration.ThemeUpdated{ID: id, Name: "Spring II"}},
		{"deleted", integration.ThemeDeleted{ID: id}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := integration.Encode(tt.evt)
			require.NoError(t, err)

			decoded, err := integration.Decode(tt.evt.Topic(), payload)
			require.NoError(t, err)
			assert.Equal(t, tt.evt, decoded)
			assert.Equal(t, id, decoded.EntityID())
		})
	}
}

func TestDecode_UnknownTopic(t *testing.T) {
	_, err := integration.Decode("theme.archived", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown integration topic")
}

func TestDecode_MalformedPayload(t *testing.T) {
	_, err := integration.Decode(integration.TopicThemeCreated, []byte(`{not json`))
	require.Error(t, err)
}
