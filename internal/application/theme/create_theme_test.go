package theme_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptheme "github.com/themery/themery/internal/application/theme"
	"github.com/themery/themery/internal/domain/errs"
	domaintheme "github.com/themery/themery/internal/domain/theme"
	"github.com/themery/themery/internal/domain/uuid"
	"github.com/themery/themery/internal/integration"
)

// mockThemeRepository mimics the transactional repository: on a successful
// Save it stages the buffered events as integration events and drains the
// buffer; on failure it leaves the aggregate untouched.
type mockThemeRepository struct {
	themes      map[uuid.UUID]*domaintheme.Theme
	staged      []integration.Event
	saveError   error
	deleteError error
}

func newMockThemeRepository() *mockThemeRepository {
	return &mockThemeRepository{
		themes: make(map[uuid.UUID]*domaintheme.Theme),
	}
}

func (m *mockThemeRepository) Save(_ context.Context, t *domaintheme.Theme) error {
	if m.saveError != nil {
		return m.saveError
	}
	for _, evt := range t.UncommittedEvents() {
		out, err := integration.FromDomainEvent(evt)
		if err != nil {
			return err
		}
		m.staged = append(m.staged, out)
	}
	t.ClearEvents()
	m.themes[t.ID()] = t
	return nil
}

func (m *mockThemeRepository) FindByID(_ context.Context, id uuid.UUID) (*domaintheme.Theme, error) {
	if t, ok := m.themes[id]; ok {
		return t, nil
	}
	return nil, errs.ErrNotFound
}

func (m *mockThemeRepository) FindByName(_ context.Context, name string) ([]*domaintheme.Theme, error) {
	var out []*domaintheme.Theme
	for _, t := range m.themes {
		if t.Name() == name {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockThemeRepository) FindByDate(_ context.Context, date time.Time) ([]*domaintheme.Theme, error) {
	var out []*domaintheme.Theme
	for _, t := range m.themes {
		if !date.Before(t.StartDate()) && !date.After(t.EndDate()) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockThemeRepository) List(_ context.Context, offset, limit int) ([]*domaintheme.Theme, error) {
	var all []*domaintheme.Theme
	for _, t := range m.themes {
		all = append(all, t)
	}
	if offset >= len(all) {
		return []*domaintheme.Theme{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (m *mockThemeRepository) Count(_ context.Context) (int, error) {
	return len(m.themes), nil
}

func (m *mockThemeRepository) Delete(_ context.Context, id uuid.UUID) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	if _, ok := m.themes[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.themes, id)
	m.staged = append(m.staged, integration.ThemeDeleted{ID: id})
	return nil
}

func validCreateCommand() apptheme.CreateThemeCommand {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	return apptheme.CreateThemeCommand{
		Name:      "Autumn Campaign",
		Number:    7,
		Letter:    "AC",
		StartDate: start,
		EndDate:   start.AddDate(0, 1, 0),
		CreatedBy: "tester",
	}
}

func TestCreateThemeUseCase_Success(t *testing.T) {
	repo := newMockThemeRepository()
	uc := apptheme.NewCreateThemeUseCase(repo)

	result, err := uc.Execute(context.Background(), validCreateCommand())
	require.NoError(t, err)
	require.NotNil(t, result.Value)

	assert.Equal(t, "Autumn Campaign", result.Value.Name())
	assert.False(t, result.Value.ID().IsZero())

	// buffer drained, created event staged for publication
	assert.Empty(t, result.Value.UncommittedEvents())
	require.Len(t, repo.staged, 1)
	created, ok := repo.staged[0].(integration.ThemeCreated)
	require.True(t, ok)
	assert.Equal(t, result.Value.ID(), created.ID)
	assert.Equal(t, "Autumn Campaign", created.Name)
}

func TestCreateThemeUseCase_ValidationFailure(t *testing.T) {
	repo := newMockThemeRepository()
	uc := apptheme.NewCreateThemeUseCase(repo)

	cmd := validCreateCommand()
	cmd.Name = ""

	_, err := uc.Execute(context.Background(), cmd)
	require.Error(t, err)
	assert.Empty(t, repo.staged)
	assert.Empty(t, repo.themes)
}

func TestCreateThemeUseCase_DomainValidationFailure(t *testing.T) {
	repo := newMockThemeRepository()
	uc := apptheme.NewCreateThemeUseCase(repo)

	tests := []struct {
		name   string
		mutate func(*apptheme.CreateThemeCommand)
	}{
		{"name too short", func(c *apptheme.CreateThemeCommand) { c.Name = "A" }},
		{"number too small", func(c *apptheme.CreateThemeCommand) { c.Number = 0 }},
		{"number too large", func(c *apptheme.CreateThemeCommand) { c.Number = 100 }},
		{"letter wrong length", func(c *apptheme.CreateThemeCommand) { c.Letter = "ABC" }},
		{"end before start", func(c *apptheme.CreateThemeCommand) { c.EndDate = c.StartDate.AddDate(0, 0, -1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCreateCommand()
			tt.mutate(&cmd)

			_, err := uc.Execute(context.Background(), cmd)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}

	assert.Empty(t, repo.staged)
}

func TestCreateThemeUseCase_SaveFailureKeepsBufferAndStagesNothing(t *testing.T) {
	repo := newMockThemeRepository()
	repo.saveError = errors.New("connection reset")
	uc := apptheme.NewCreateThemeUseCase(repo)

	_, err := uc.Execute(context.Background(), validCreateCommand())
	require.Error(t, err)

	assert.Empty(t, repo.staged)
	assert.Empty(t, repo.themes)
}

func TestCreateThemeUseCase_CanceledContext(t *testing.T) {
	repo := newMockThemeRepository()
	uc := apptheme.NewCreateThemeUseCase(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Execute(ctx, validCreateCommand())
	require.ErrorIs(t, err, context.Canceled)
}
