package eventbus_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themery/themery/internal/application/projection"
	"github.com/themery/themery/internal/domain/activity"
	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/uuid"
	"github.com/themery/themery/internal/infrastructure/eventbus"
	"github.com/themery/themery/internal/integration"
)

type stubProjectionRepo struct {
	rows        map[uuid.UUID]string
	upsertError error
	upsertCalls int
}

func newStubProjectionRepo() *stubProjectionRepo {
	return &stubProjectionRepo{rows: make(map[uuid.UUID]string)}
}

func (s *stubProjectionRepo) Upsert(_ context.Context, p *activity.ThemeProjection) error {
	s.upsertCalls++
	if s.upsertError != nil {
		return s.upsertError
	}
	s.rows[p.ID()] = p.Name()
	return nil
}

func (s *stubProjectionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.rows, id)
	return nil
}

func (s *stubProjectionRepo) FindByID(_ context.Context, id uuid.UUID) (*activity.ThemeProjection, error) {
	name, ok := s.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return activity.NewThemeProjection(id, name)
}

func (s *stubProjectionRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.rows[id]
	return ok, nil
}

func (s *stubProjectionRepo) List(_ context.Context, _, _ int) ([]*activity.ThemeProjection, error) {
	return nil, nil
}

func newDispatcher(repo *stubProjectionRepo) *eventbus.ThemeEventDispatcher {
	return eventbus.NewThemeEventDispatcher(
		projection.NewUpsertThemeUseCase(repo),
		projection.NewRemoveThemeUseCase(repo),
	)
}

func mustEncode(t *testing.T, evt integration.Event) []byte {
	t.Helper()
	payload, err := integration.Encode(evt)
	require.NoError(t, err)
	return payload
}

func TestThemeEventDispatcher_AppliesCreated(t *testing.T) {
	repo := newStubProjectionRepo()
	d := newDispatcher(repo)

	id := uuid.NewUUID()
	msg := eventbus.Message{
		ID:      "1-0",
		Topic:   integration.TopicThemeCreated,
		Payload: mustEncode(t, integration.ThemeCreated{ID: id, Name: "Autumn"}),
	}

	require.NoError(t, d.Handle(context.Background(), msg))
	assert.Equal(t, "Autumn", repo.rows[id])
}

func TestThemeEventDispatcher_UpdateCreatesMissingRow(t *testing.T) {
	repo := newStubProjectionRepo()
	d := newDispatcher(repo)

	id := uuid.NewUUID()
	msg := eventbus.Message{
		ID:      "1-0",
		Topic:   integration.TopicThemeUpdated,
		Payload: mustEncode(t, integration.ThemeUpdated{ID: id, Name: "Winter"}),
	}

	require.NoError(t, d.Handle(context.Background(), msg))
	assert.Equal(t, "Winter", repo.rows[id])
}

func TestThemeEventDispatcher_AppliesDeleted(t *testing.T) {
	repo := newStubProjectionRepo()
	id := uuid.NewUUID()
	repo.rows[id] = "Autumn"

	d := newDispatcher(repo)
	msg := eventbus.Message{
		ID:      "1-0",
		Topic:   integration.TopicThemeDeleted,
		Payload: mustEncode(t, integration.ThemeDeleted{ID: id}),
	}

	require.NoError(t, d.Handle(context.Background(), msg))
	assert.Empty(t, repo.rows)

	// redelivery of the same delete succeeds
	require.NoError(t, d.Handle(context.Background(), msg))
}

func TestThemeEventDispatcher_DuplicateDeliveriesConverge(t *testing.T) {
	repo := newStubProjectionRepo()
	d := newDispatcher(repo)

	id := uuid.NewUUID()
	msg := eventbus.Message{
		ID:      "1-0",
		Topic:   integration.TopicThemeCreated,
		Payload: mustEncode(t, integration.ThemeCreated{ID: id, Name: "Autumn"}),
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Handle(context.Background(), msg))
	}

	assert.Len(t, repo.rows, 1)
	assert.Equal(t, "Autumn", repo.rows[id])
	assert.Equal(t, 3, repo.upsertCalls)
}

func TestThemeEventDispatcher_MalformedPayload(t *testing.T) {
	repo := newStubProjectionRepo()
	d := newDispatcher(repo)

	msg := eventbus.Message{
		ID:      "1-0",
		Topic:   integration.TopicThemeCreated,
		Payload: []byte(`{not json`),
	}

	err := d.Handle(context.Background(), msg)
	require.Error(t, err)
	assert.Empty(t, repo.rows)
}

func TestThemeEventDispatcher_UnknownTopic(t *testing.T) {
	repo := newStubProjectionRepo()
	d := newDispatcher(repo)

	msg := eventbus.Message{ID: "1-0", Topic: "theme.archived", Payload: []byte(`{}`)}

	err := d.Handle(context.Background(), msg)
	require.Error(t, err)
}

func TestInMemoryBus_EndToEndDelivery(t *testing.T) {
	repo := newStubProjectionRepo()
	d := newDispatcher(repo)

	bus := eventbus.NewInMemoryBus()
	require.NoError(t, eventbus.RegisterThemeSubscriptions(bus, d, eventbus.NewLoggingHandler(slog.Default())))

	id := uuid.NewUUID()
	payload := mustEncode(t, integration.ThemeCreated{ID: id, Name: "Autumn"})
	require.NoError(t, bus.Publish(context.Background(), integration.TopicThemeCreated, payload))

	assert.Equal(t, "Autumn", repo.rows[id])
	assert.Empty(t, bus.DeadLetters())
}

func TestInMemoryBus_DeadLettersAfterRetries(t *testing.T) {
	repo := newStubProjectionRepo()
	repo.upsertError = errors.New("store unavailable")
	d := newDispatcher(repo)

	bus := eventbus.NewInMemoryBus(eventbus.WithInMemoryMaxRetries(2))
	require.NoError(t, eventbus.RegisterThemeSubscriptions(bus, d, nil))

	payload := mustEncode(t, integration.ThemeCreated{ID: uuid.NewUUID(), Name: "Autumn"})
	require.NoError(t, bus.Publish(context.Background(), integration.TopicThemeCreated, payload))

	letters := bus.DeadLetters()
	require.Len(t, letters, 1)
	assert.Equal(t, integration.TopicThemeCreated, letters[0].Topic)
	assert.Contains(t, letters[0].Error, "store unavailable")
	// 1 initial attempt + 2 retries
	assert.Equal(t, 3, repo.upsertCalls)
}

func TestInMemoryBus_DuplicateSubscription(t *testing.T) {
	bus := eventbus.NewInMemoryBus()
	handler := func(context.Context, eventbus.Message) error { return nil }

	require.NoError(t, bus.Subscribe("theme.created", handler))
	require.Error(t, bus.Subscribe("theme.created", handler))
}
