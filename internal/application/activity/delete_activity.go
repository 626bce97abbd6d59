package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/activity"
	"github.com/themery/themery/internal/domain/errs"
)

// DeleteActivityUseCase deletes an activity. Purely local, no replication
// side effects.
type DeleteActivityUseCase struct {
	appcore.BaseUseCase

	activityRepo activity.Repository
}

// NewDeleteActivityUseCase creates a new DeleteActivityUseCase.
func NewDeleteActivityUseCase(activityRepo activity.Repository) *DeleteActivityUseCase {
	return &DeleteActivityUseCase{activityRepo: activityRepo}
}

// Execute deletes the activity.
func (uc *DeleteActivityUseCase) Execute(ctx context.Context, cmd DeleteActivityCommand) (DeleteResult, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return DeleteResult{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateUUID("activityId", cmd.ActivityID); err != nil {
		return DeleteResult{}, uc.WrapError("validation failed", err)
	}

	if err := uc.activityRepo.Delete(ctx, cmd.ActivityID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return DeleteResult{}, fmt.Errorf("%w: %s", ErrActivityNotFound, cmd.ActivityID)
		}
		return DeleteResult{}, uc.WrapError("delete activity", err)
	}

	return DeleteResult{Deleted: true}, nil
}
