package activity

import (
	"context"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/activity"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// ListActivitiesUseCase lists activities with pagination.
type ListActivitiesUseCase struct {
	appcore.BaseUseCase

	activityRepo activity.Repository
}

// NewListActivitiesUseCase creates a new ListActivitiesUseCase.
func NewListActivitiesUseCase(activityRepo activity.Repository) *ListActivitiesUseCase {
	return &ListActivitiesUseCase{activityRepo: activityRepo}
}

// Execute lists activities.
func (uc *ListActivitiesUseCase) Execute(ctx context.Context, query ListActivitiesQuery) (ListResult, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return ListResult{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateNonNegative("offset", query.Offset); err != nil {
		return ListResult{}, uc.WrapError("validation failed", err)
	}

	limit := clampLimit(query.Limit)

	activities, err := uc.activityRepo.List(ctx, query.Offset, limit)
	if err != nil {
		return ListResult{}, uc.WrapError("list activities", err)
	}

	total, err := uc.activityRepo.Count(ctx)
	if err != nil {
		return ListResult{}, uc.WrapError("count activities", err)
	}

	return ListResult{
		Activities: activities,
		TotalCount: total,
		Offset:     query.Offset,
		Limit:      limit,
	}, nil
}

// ListThemeProjectionsUseCase lists the locally replicated themes. Useful
// for pickers in the activity UI and for replication lag checks.
type ListThemeProjectionsUseCase struct {
	appcore.BaseUseCase

	projectionRepo activity.ThemeProjectionRepository
}

// NewListThemeProjectionsUseCase creates a new ListThemeProjectionsUseCase.
func NewListThemeProjectionsUseCase(projectionRepo activity.ThemeProjectionRepository) *ListThemeProjectionsUseCase {
	return &ListThemeProjectionsUseCase{projectionRepo: projectionRepo}
}

// Execute lists theme projection rows.
func (uc *ListThemeProjectionsUseCase) Execute(ctx context.Context, query ListThemeProjectionsQuery) (ProjectionListResult, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return ProjectionListResult{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateNonNegative("offset", query.Offset); err != nil {
		return ProjectionListResult{}, uc.WrapError("validation failed", err)
	}

	limit := clampLimit(query.Limit)

	themes, err := uc.projectionRepo.List(ctx, query.Offset, limit)
	if err != nil {
		return ProjectionListResult{}, uc.WrapError("list theme projections", err)
	}

	return ProjectionListResult{
		Themes: themes,
		Offset: query.Offset,
		Limit:  limit,
	}, nil
}
