package theme_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptheme "github.com/themery/themery/internal/application/theme"
	"github.com/themery/themery/internal/domain/uuid"
)

func TestGetThemeUseCase_Success(t *testing.T) {
	repo := newMockThemeRepository()
	id := seedTheme(t, repo)

	uc := apptheme.NewGetThemeUseCase(repo)
	result, err := uc.Execute(context.Background(), apptheme.GetThemeQuery{ThemeID: id})
	require.NoError(t, err)
	assert.Equal(t, id, result.Value.ID())
}

func TestGetThemeUseCase_NotFound(t *testing.T) {
	repo := newMockThemeRepository()
	uc := apptheme.NewGetThemeUseCase(repo)

	_, err := uc.Execute(context.Background(), apptheme.GetThemeQuery{ThemeID: uuid.NewUUID()})
	require.ErrorIs(t, err, apptheme.ErrThemeNotFound)
}

func TestFindThemesByNameUseCase(t *testing.T) {
	repo := newMockThemeRepository()
	seedTheme(t, repo)

	uc := apptheme.NewFindThemesByNameUseCase(repo)

	result, err := uc.Execute(context.Background(), apptheme.GetThemesByNameQuery{Name: "Autumn Campaign"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)

	result, err = uc.Execute(context.Background(), apptheme.GetThemesByNameQuery{Name: "No Such Theme"})
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
}

func TestFindThemesByDateUseCase(t *testing.T) {
	repo := newMockThemeRepository()
	seedTheme(t, repo)

	uc := apptheme.NewFindThemesByDateUseCase(repo)

	inside := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	result, err := uc.Execute(context.Background(), apptheme.GetThemesByDateQuery{Date: inside})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)

	outside := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	result, err = uc.Execute(context.Background(), apptheme.GetThemesByDateQuery{Date: outside})
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
}

func TestListThemesUseCase(t *testing.T) {
	repo := newMockThemeRepository()
	seedTheme(t, repo)

	uc := apptheme.NewListThemesUseCase(repo)
	result, err := uc.Execute(context.Background(), apptheme.ListThemesQuery{Offset: 0, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	assert.Len(t, result.Themes, 1)
	assert.Equal(t, 10, result.Limit)
}

func TestListThemesUseCase_DefaultLimit(t *testing.T) {
	repo := newMockThemeRepository()
	uc := apptheme.NewListThemesUseCase(repo)

	result, err := uc.Execute(context.Background(), apptheme.ListThemesQuery{})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Limit)
}
