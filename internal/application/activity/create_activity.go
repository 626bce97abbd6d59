package activity

import (
	"context"
	"fmt"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/activity"
	"github.com/themery/themery/internal/domain/errs"
)

// CreateActivityUseCase creates an activity. The theme reference must
// resolve to a locally replicated projection row; an unreplicated theme is
// rejected even if it exists in the theme service.
type CreateActivityUseCase struct {
	appcore.BaseUseCase

	activityRepo   activity.Repository
	projectionRepo activity.ThemeProjectionRepository
}

// NewCreateActivityUseCase creates a new CreateActivityUseCase.
func NewCreateActivityUseCase(
	activityRepo activity.Repository,
	projectionRepo activity.ThemeProjectionRepository,
) *CreateActivityUseCase {
	return &CreateActivityUseCase{
		activityRepo:   activityRepo,
		projectionRepo: projectionRepo,
	}
}

// Execute creates the activity.
func (uc *CreateActivityUseCase) Execute(ctx context.Context, cmd CreateActivityCommand) (Result, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return Result{}, uc.WrapError("validate context", err)
	}

	if err := uc.Validate(cmd); err != nil {
		return Result{}, uc.WrapError("validation failed", err)
	}

	exists, err := uc.projectionRepo.Exists(ctx, cmd.ThemeID)
	if err != nil {
		return Result{}, uc.WrapError("check theme projection", err)
	}
	if !exists {
		return Result{}, fmt.Errorf("%w: %s", errs.ErrThemeNotReplicated, cmd.ThemeID)
	}

	a, err := activity.NewActivity(cmd.ThemeID, cmd.Name, activity.Details{
		Description: cmd.Details.Description,
		URL:         cmd.Details.URL,
		Date:        cmd.Details.Date,
	})
	if err != nil {
		return Result{}, uc.WrapError("create activity entity", err)
	}

	if err = uc.activityRepo.Save(ctx, a); err != nil {
		return Result{}, uc.WrapError("save activity", err)
	}

	return Result{Result: appcore.Result[*activity.Activity]{Value: a}}, nil
}

// Validate checks command fields before touching the domain layer.
func (uc *CreateActivityUseCase) Validate(cmd CreateActivityCommand) error {
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
