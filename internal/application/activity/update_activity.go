package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/activity"
	"github.com/themery/themery/internal/domain/errs"
)

// UpdateActivityUseCase updates an activity. Retargeting to another theme
// re-verifies the reference against the projection store.
type UpdateActivityUseCase struct {
	appcore.BaseUseCase

	activityRepo   activity.Repository
	projectionRepo activity.ThemeProjectionRepository
}

// NewUpdateActivityUseCase creates a new UpdateActivityUseCase.
func NewUpdateActivityUseCase(
	activityRepo activity.Repository,
	projectionRepo activity.ThemeProjectionRepository,
) *UpdateActivityUseCase {
	return &UpdateActivityUseCase{
		activityRepo:   activityRepo,
		projectionRepo: projectionRepo,
	}
}

// Execute updates the activity.
func (uc *UpdateActivityUseCase) Execute(ctx context.Context, cmd UpdateActivityCommand) (Result, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return Result{}, uc.WrapError("validate context", err)
	}

	if err := uc.Validate(cmd); err != nil {
		return Result{}, uc.WrapError("validation failed", err)
	}

	a, err := uc.activityRepo.FindByID(ctx, cmd.ActivityID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %s", ErrActivityNotFound, cmd.ActivityID)
		}
		return Result{}, uc.WrapError("find activity", err)
	}

	exists, err := uc.projectionRepo.Exists(ctx, cmd.ThemeID)
	if err != nil {
		return Result{}, uc.WrapError("check theme projection", err)
	}
	if !exists {
		return Result{}, fmt.Errorf("%w: %s", errs.ErrThemeNotReplicated, cmd.ThemeID)
	}

	if err = a.Update(cmd.ThemeID, cmd.Name, activity.Details{
		Description: cmd.Details.Description,
		URL:         cmd.Details.URL,
		Date:        cmd.Details.Date,
	}); err != nil {
		return Result{}, uc.WrapError("update activity entity", err)
	}

	if err = uc.activityRepo.Save(ctx, a); err != nil {
		return Result{}, uc.WrapError("save activity", err)
	}

	return Result{Result: appcore.Result[*activity.Activity]{Value: a}}, nil
}

// Validate checks command fields before touching the domain layer.
func (uc *UpdateActivityUseCase) Validate(cmd UpdateActivityCommand) error {
	if err := appcore.ValidateUUID("activityId", cmd.ActivityID); err != nil {
		return err
	}
	if err := appcore.ValidateUUID("themeId", cmd.ThemeID); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("name", cmd.Name); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("details.url", cmd.Details.URL); err != nil {
		return err
	}
	return nil
}
