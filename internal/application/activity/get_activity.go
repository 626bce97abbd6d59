package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/activity"
	"github.com/themery/themery/internal/domain/errs"
)

// GetActivityUseCase loads a single activity.
type GetActivityUseCase struct {
	appcore.BaseUseCase

	activityRepo activity.Repository
}

// NewGetActivityUseCase creates a new GetActivityUseCase.
func NewGetActivityUseCase(activityRepo activity.Repository) *GetActivityUseCase {
	return &GetActivityUseCase{activityRepo: activityRepo}
}

// Execute loads the activity by ID.
func (uc *GetActivityUseCase) Execute(ctx context.Context, query GetActivityQuery) (Result, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return Result{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateUUID("activityId", query.ActivityID); err != nil {
		return Result{}, uc.WrapError("validation failed", err)
	}

	a, err := uc.activityRepo.FindByID(ctx, query.ActivityID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %s", ErrActivityNotFound, query.ActivityID)
		}
		return Result{}, uc.WrapError("find activity", err)
	}

	return Result{Result: appcore.Result[*activity.Activity]{Value: a}}, nil
}

// FindActivitiesByThemeUseCase finds activities referencing a theme.
type FindActivitiesByThemeUseCase struct {
	appcore.BaseUseCase

	activityRepo activity.Repository
}

// NewFindActivitiesByThemeUseCase creates a new FindActivitiesByThemeUseCase.
func NewFindActivitiesByThemeUseCase(activityRepo activity.Repository) *FindActivitiesByThemeUseCase {
	return &FindActivitiesByThemeUseCase{activityRepo: activityRepo}
}

// Execute finds activities for the given theme.
func (uc *FindActivitiesByThemeUseCase) Execute(ctx context.Context, query GetActivitiesByThemeQuery) (ListResult, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return ListResult{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateUUID("themeId", query.ThemeID); err != nil {
		return ListResult{}, uc.WrapError("validation failed", err)
	}

	activities, err := uc.activityRepo.FindByThemeID(ctx, query.ThemeID)
	if err != nil {
		return ListResult{}, uc.WrapError("find activities by theme", err)
	}

	return ListResult{Activities: activities, TotalCount: len(activities)}, nil
}

// FindActivitiesByNameUseCase finds activities by exact name match.
type FindActivitiesByNameUseCase struct {
	appcore.BaseUseCase

	activityRepo activity.Repository
}

// NewFindActivitiesByNameUseCase creates a new FindActivitiesByNameUseCase.
func NewFindActivitiesByNameUseCase(activityRepo activity.Repository) *FindActivitiesByNameUseCase {
	return &FindActivitiesByNameUseCase{activityRepo: activityRepo}
}

// Execute finds activities with the given name.
func (uc *FindActivitiesByNameUseCase) Execute(ctx context.Context, query GetActivitiesByNameQuery) (ListResult, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return ListResult{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateRequired("name", query.Name); err != nil {
		return ListResult{}, uc.WrapError("validation failed", err)
	}

	activities, err := uc.activityRepo.FindByName(ctx, query.Name)
	if err != nil {
		return ListResult{}, uc.WrapError("find activities by name", err)
	}

	return ListResult{Activities: activities, TotalCount: len(activities)}, nil
}
