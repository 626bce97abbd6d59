package projection

import (
	"context"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/activity"
)

// UpsertThemeUseCase applies a theme.created or theme.updated delivery.
// An update for an unknown theme creates the row, which makes the apply
// order-tolerant: a late created delivery after an update changes nothing.
type UpsertThemeUseCase struct {
	appcore.BaseUseCase

	projectionRepo activity.ThemeProjectionRepository
}

// NewUpsertThemeUseCase creates a new UpsertThemeUseCase.
func NewUpsertThemeUseCase(projectionRepo activity.ThemeProjectionRepository) *UpsertThemeUseCase {
	return &UpsertThemeUseCase{projectionRepo: projectionRepo}
}

// Execute upserts the projection row.
func (uc *UpsertThemeUseCase) Execute(ctx context.Context, cmd UpsertThemeCommand) (appcore.Result[*activity.ThemeProjection], error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return appcore.Result[*activity.ThemeProjection]{}, uc.WrapError("validate context", err)
	}

	p, err := activity.NewThemeProjection(cmd.ThemeID, cmd.Name)
	if err != nil {
		return appcore.Result[*activity.ThemeProjection]{}, uc.WrapError("build projection row", err)
	}

	if err = uc.projectionRepo.Upsert(ctx, p); err != nil {
		return appcore.Result[*activity.ThemeProjection]{}, uc.WrapError("upsert projection row", err)
	}

	return appcore.Result[*activity.ThemeProjection]{Value: p}, nil
}
