package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appactivity "github.com/themery/themery/internal/application/activity"
	domainactivity "github.com/themery/themery/internal/domain/activity"
	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/uuid"
)

type mockActivityRepository struct {
	activities map[uuid.UUID]*domainactivity.Activity
	saveError  error
}

func newMockActivityRepository() *mockActivityRepository {
	return &mockActivityRepository{activities: make(map[uuid.UUID]*domainactivity.Activity)}
}

func (m *mockActivityRepository) Save(_ context.Context, a *domainactivity.Activity) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.activities[a.ID()] = a
	return nil
}

func (m *mockActivityRepository) FindByID(_ context.Context, id uuid.UUID) (*domainactivity.Activity, error) {
	if a, ok := m.activities[id]; ok {
		return a, nil
	}
	return nil, errs.ErrNotFound
}

func (m *mockActivityRepository) FindByName(_ context.Context, name string) ([]*domainactivity.Activity, error) {
	var out []*domainactivity.Activity
	for _, a := range m.activities {
		if a.Name() == name {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockActivityRepository) FindByThemeID(_ context.Context, themeID uuid.UUID) ([]*domainactivity.Activity, error) {
	var out []*domainactivity.Activity
	for _, a := range m.activities {
		if a.ThemeID() == themeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockActivityRepository) List(_ context.Context, offset, limit int) ([]*domainactivity.Activity, error) {
	var all []*domainactivity.Activity
	for _, a := range m.activities {
		all = append(all, a)
	}
	if offset >= len(all) {
		return []*domainactivity.Activity{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (m *mockActivityRepository) Count(_ context.Context) (int, error) {
	return len(m.activities), nil
}

func (m *mockActivityRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.activities[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.activities, id)
	return nil
}

type mockProjectionStore struct {
	rows map[uuid.UUID]string
}

func newMockProjectionStore() *mockProjectionStore {
	return &mockProjectionStore{rows: make(map[uuid.UUID]string)}
}

func (m *mockProjectionStore) Upsert(_ context.Context, p *domainactivity.ThemeProjection) error {
	m.rows[p.ID()] = p.Name()
	return nil
}

func (m *mockProjectionStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

func (m *mockProjectionStore) FindByID(_ context.Context, id uuid.UUID) (*domainactivity.ThemeProjection, error) {
	name, ok := m.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return domainactivity.NewThemeProjection(id, name)
}

func (m *mockProjectionStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.rows[id]
	return ok, nil
}

func (m *mockProjectionStore) List(_ context.Context, offset, limit int) ([]*domainactivity.ThemeProjection, error) {
	var all []*domainactivity.ThemeProjection
	for id, name := range m.rows {
		p, err := domainactivity.NewThemeProjection(id, name)
		if err != nil {
			return nil, err
		}
		all = append(all, p)
	}
	if offset >= len(all) {
		return []*domainactivity.ThemeProjection{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func validCreateCommand(themeID uuid.UUID) appactivity.CreateActivityCommand {
	return appactivity.CreateActivityCommand{
		ThemeID: themeID,
		Name:    "Kickoff Meetup",
		Details: appactivity.DetailsInput{
			Description: "Opening session",
			URL:         "https://example.org/kickoff",
			Date:        time.Date(2025, 9, 5, 18, 0, 0, 0, time.UTC),
		},
	}
}

func TestCreateActivityUseCase_Success(t *testing.T) {
	repo := newMockActivityRepository()
	projections := newMockProjectionStore()

	themeID := uuid.NewUUID()
	projections.rows[themeID] = "Autumn"

	uc := appactivity.NewCreateActivityUseCase(repo, projections)
	result, err := uc.Execute(context.Background(), validCreateCommand(themeID))
	require.NoError(t, err)

	assert.Equal(t, "Kickoff Meetup", result.Value.Name())
	assert.Equal(t, themeID, result.Value.ThemeID())
	assert.Len(t, repo.activities, 1)
}

func TestCreateActivityUseCase_RejectsUnreplicatedTheme(t *testing.T) {
	repo := newMockActivityRepository()
	projections := newMockProjectionStore()

	uc := appactivity.NewCreateActivityUseCase(repo, projections)
	_, err := uc.Execute(context.Background(), validCreateCommand(uuid.NewUUID()))

	require.ErrorIs(t, err, errs.ErrThemeNotReplicated)
	assert.Empty(t, repo.activities)
}

func TestCreateActivityUseCase_ValidationFailure(t *testing.T) {
	repo := newMockActivityRepository()
	projections := newMockProjectionStore()
	themeID := uuid.NewUUID()
	projections.rows[themeID] = "Autumn"

	uc := appactivity.NewCreateActivityUseCase(repo, projections)

	tests := []struct {
		name   string
		mutate func(*appactivity.CreateActivityCommand)
	}{
		{"missing theme id", func(c *appactivity.CreateActivityCommand) { c.ThemeID = "" }},
		{"missing name", func(c *appactivity.CreateActivityCommand) { c.Name = "" }},
		{"missing url", func(c *appactivity.CreateActivityCommand) { c.Details.URL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCreateCommand(themeID)
			tt.mutate(&cmd)

			_, err := uc.Execute(context.Background(), cmd)
			require.Error(t, err)
		})
	}

	assert.Empty(t, repo.activities)
}

func TestCreateActivityUseCase_SaveFailure(t *testing.T) {
	repo := newMockActivityRepository()
	repo.saveError = errors.New("connection reset")
	projections := newMockProjectionStore()
	themeID := uuid.NewUUID()
	projections.rows[themeID] = "Autumn"

	uc := appactivity.NewCreateActivityUseCase(repo, projections)
	_, err := uc.Execute(context.Background(), validCreateCommand(themeID))
	require.Error(t, err)
}
