package activity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appactivity "github.com/themery/themery/internal/application/activity"
	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/uuid"
)

func seedActivity(t *testing.T, repo *mockActivityRepository, projections *mockProjectionStore) (activityID, themeID uuid.UUID) {
	t.Helper()

	themeID = uuid.NewUUID()
	projections.rows[themeID] = "Autumn"

	uc := appactivity.NewCreateActivityUseCase(repo, projections)
	result, err := uc.Execute(context.Background(), validCreateCommand(themeID))
	require.NoError(t, err)

	return result.Value.ID(), themeID
}

func TestUpdateActivityUseCase_Success(t *testing.T) {
	repo := newMockActivityRepository()
	projections := newMockProjectionStore()
	activityID, themeID := seedActivity(t, repo, projections)

	uc := appactivity.NewUpdateActivityUseCase(repo, projections)
	cmd := appactivity.UpdateActivityCommand{
		ActivityID: activityID,
		ThemeID:    themeID,
		Name:       "Closing Meetup",
		Details:    validCreateCommand(themeID).Details,
	}

	result, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "Closing Meetup", result.Value.Name())
}

func TestUpdateActivityUseCase_RetargetToUnreplicatedTheme(t *testing.T) {
	repo := newMockActivityRepository()
	projections := newMockProjectionStore()
	activityID, themeID := seedActivity(t, repo, projections)

	uc := appactivity.NewUpdateActivityUseCase(repo, projections)
	cmd := appactivity.UpdateActivityCommand{
		ActivityID: activityID,
		ThemeID:    uuid.NewUUID(),
		Name:       "Closing Meetup",
		Details:    validCreateCommand(themeID).Details,
	}

	_, err := uc.Execute(context.Background(), cmd)
	require.ErrorIs(t, err, errs.ErrThemeNotReplicated)

	// the stored activity keeps its original theme
	stored := repo.activities[activityID]
	assert.Equal(t, themeID, stored.ThemeID())
}

func TestUpdateActivityUseCase_NotFound(t *testing.T) {
	repo := newMockActivityRepository()
	projections := newMockProjectionStore()
	themeID := uuid.NewUUID()
	projections.rows[themeID] = "Autumn"

	uc := appactivity.NewUpdateActivityUseCase(repo, projections)
	cmd := appactivity.UpdateActivityCommand{
		ActivityID: uuid.NewUUID(),
		ThemeID:    themeID,
		Name:       "Closing Meetup",
		Details:    validCreateCommand(themeID).Details,
	}

	_, err := uc.Execute(context.Background(), cmd)
	require.ErrorIs(t, err, appactivity.ErrActivityNotFound)
}

func TestDeleteActivityUseCase(t *testing.T) {
	repo := newMockActivityRepository()
	projections := newMockProjectionStore()
	activityID, _ := seedActivity(t, repo, projections)

	uc := appactivity.NewDeleteActivityUseCase(repo)

	result, err := uc.Execute(context.Background(), appactivity.DeleteActivityCommand{ActivityID: activityID})
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.Empty(t, repo.activities)

	_, err = uc.Execute(context.Background(), appactivity.DeleteActivityCommand{ActivityID: activityID})
	require.ErrorIs(t, err, appactivity.ErrActivityNotFound)
}

func TestGetActivityUseCase(t *testing.T) {
	repo := newMockActivityRepository()
	projections := newMockProjectionStore()
	activityID, _ := seedActivity(t, repo, projections)

	uc := appactivity.NewGetActivityUseCase(repo)

	result, err := uc.Execute(context.Background(), appactivity.GetActivityQuery{ActivityID: activityID})
	require.NoError(t, err)
	assert.Equal(t, activityID, result.Value.ID())

	_, err = uc.Execute(context.Background(), appactivity.GetActivityQuery{ActivityID: uuid.NewUUID()})
	require.ErrorIs(t, err, appactivity.ErrActivityNotFound)
}

func TestFindActivitiesByThemeUseCase(t *testing.T) {
	repo := newMockActivityRepository()
	projections := newMockProjectionStore()
	_, themeID := seedActivity(t, repo, projections)

	uc := appactivity.NewFindActivitiesByThemeUseCase(repo)

	result, err := uc.Execute(context.Background(), appactivity.GetActivitiesByThemeQuery{ThemeID: themeID})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)

	result, err = uc.Execute(context.Background(), appactivity.GetActivitiesByThemeQuery{ThemeID: uuid.NewUUID()})
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
}

func TestListActivitiesUseCase(t *testing.T) {
	repo := newMockActivityRepository()
	projections := newMockProjectionStore()
	seedActivity(t, repo, projections)

	uc := appactivity.NewListActivitiesUseCase(repo)
	result, err := uc.Execute(context.Background(), appactivity.ListActivitiesQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	assert.Len(t, result.Activities, 1)
}

func TestListThemeProjectionsUseCase(t *testing.T) {
	projections := newMockProjectionStore()
	projections.rows[uuid.NewUUID()] = "Autumn"
	projections.rows[uuid.NewUUID()] = "Winter"

	uc := appactivity.NewListThemeProjectionsUseCase(projections)
	result, err := uc.Execute(context.Background(), appactivity.ListThemeProjectionsQuery{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, result.Themes, 2)
}
