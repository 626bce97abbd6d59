package theme_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptheme "github.com/themery/themery/internal/application/theme"
	"github.com/themery/themery/internal/domain/uuid"
	"github.com/themery/themery/internal/integration"
)

func seedTheme(t *testing.T, repo *mockThemeRepository) uuid.UUID {
	t.Helper()

	uc := apptheme.NewCreateThemeUseCase(repo)
	result, err := uc.Execute(context.Background(), validCreateCommand())
	require.NoError(t, err)

	repo.staged = nil
	return result.Value.ID()
}

func TestUpdateThemeUseCase_Success(t *testing.T) {
	repo := newMockThemeRepository()
	id := seedTheme(t, repo)

	uc := apptheme.NewUpdateThemeUseCase(repo)
	cmd := apptheme.UpdateThemeCommand{
		ThemeID:    id,
		Name:       "Winter Campaign",
		Number:     8,
		Letter:     "WC",
		StartDate:  validCreateCommand().StartDate,
		EndDate:    validCreateCommand().EndDate,
		ModifiedBy: "editor",
	}

	result, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "Winter Campaign", result.Value.Name())
	assert.Equal(t, "editor", result.Value.ModifiedBy())

	require.Len(t, repo.staged, 1)
	updated, ok := repo.staged[0].(integration.ThemeUpdated)
	require.True(t, ok)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "Winter Campaign", updated.Name)
}

func TestUpdateThemeUseCase_NotFound(t *testing.T) {
	repo := newMockThemeRepository()
	uc := apptheme.NewUpdateThemeUseCase(repo)

	cmd := apptheme.UpdateThemeCommand{
		ThemeID:    uuid.NewUUID(),
		Name:       "Winter Campaign",
		Number:     8,
		Letter:     "WC",
		StartDate:  validCreateCommand().StartDate,
		EndDate:    validCreateCommand().EndDate,
		ModifiedBy: "editor",
	}

	_, err := uc.Execute(context.Background(), cmd)
	require.ErrorIs(t, err, apptheme.ErrThemeNotFound)
}

func TestUpdateThemeUseCase_SaveFailureKeepsBuffer(t *testing.T) {
	repo := newMockThemeRepository()
	id := seedTheme(t, repo)

	repo.saveError = errors.New("connection reset")
	uc := apptheme.NewUpdateThemeUseCase(repo)

	cmd := apptheme.UpdateThemeCommand{
		ThemeID:    id,
		Name:       "Winter Campaign",
		Number:     8,
		Letter:     "WC",
		StartDate:  validCreateCommand().StartDate,
		EndDate:    validCreateCommand().EndDate,
		ModifiedBy: "editor",
	}

	_, err := uc.Execute(context.Background(), cmd)
	require.Error(t, err)

	// nothing staged, the event stays buffered for a later retry
	assert.Empty(t, repo.staged)
	assert.Len(t, repo.themes[id].UncommittedEvents(), 1)
}

func TestDeleteThemeUseCase_Success(t *testing.T) {
	repo := newMockThemeRepository()
	id := seedTheme(t, repo)

	uc := apptheme.NewDeleteThemeUseCase(repo)
	result, err := uc.Execute(context.Background(), apptheme.DeleteThemeCommand{ThemeID: id})
	require.NoError(t, err)
	assert.True(t, result.Deleted)

	require.Len(t, repo.staged, 1)
	deleted, ok := repo.staged[0].(integration.ThemeDeleted)
	require.True(t, ok)
	assert.Equal(t, id, deleted.ID)
	assert.NotContains(t, repo.themes, id)
}

func TestDeleteThemeUseCase_NotFound(t *testing.T) {
	repo := newMockThemeRepository()
	uc := apptheme.NewDeleteThemeUseCase(repo)

	_, err := uc.Execute(context.Background(), apptheme.DeleteThemeCommand{ThemeID: uuid.NewUUID()})
	require.ErrorIs(t, err, apptheme.ErrThemeNotFound)
}
