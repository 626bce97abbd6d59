package projection

import (
	"context"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/activity"
)

// RemoveThemeUseCase applies a theme.deleted delivery. Removing a row that
// does not exist succeeds, so redeliveries and deletes racing ahead of the
// corresponding create are both harmless.
type RemoveThemeUseCase struct {
	appcore.BaseUseCase

	projectionRepo activity.ThemeProjectionRepository
}

// NewRemoveThemeUseCase creates a new RemoveThemeUseCase.
func NewRemoveThemeUseCase(projectionRepo activity.ThemeProjectionRepository) *RemoveThemeUseCase {
	return &RemoveThemeUseCase{projectionRepo: projectionRepo}
}

// Execute removes the projection row.
func (uc *RemoveThemeUseCase) Execute(ctx context.Context, cmd RemoveThemeCommand) (appcore.Result[bool], error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return appcore.Result[bool]{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateUUID("themeId", cmd.ThemeID); err != nil {
		return appcore.Result[bool]{}, uc.WrapError("validation failed", err)
	}

	if err := uc.projectionRepo.Delete(ctx, cmd.ThemeID); err != nil {
		return appcore.Result[bool]{}, uc.WrapError("delete projection row", err)
	}

	return appcore.Result[bool]{Value: true}, nil
}
