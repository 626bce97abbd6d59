package theme

import (
	"context"
	"errors"
	"fmt"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/theme"
)

// DeleteThemeUseCase deletes a theme. The repository removes the document
// and stages the theme.deleted event in one transaction, so consumers
// learn about every committed deletion exactly as they do about writes.
type DeleteThemeUseCase struct {
	appcore.BaseUseCase

	themeRepo theme.Repository
}

// NewDeleteThemeUseCase creates a new DeleteThemeUseCase.
func NewDeleteThemeUseCase(themeRepo theme.Repository) *DeleteThemeUseCase {
	return &DeleteThemeUseCase{themeRepo: themeRepo}
}

// Execute deletes the theme.
func (uc *DeleteThemeUseCase) Execute(ctx context.Context, cmd DeleteThemeCommand) (DeleteResult, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return DeleteResult{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateUUID("themeId", cmd.ThemeID); err != nil {
		return DeleteResult{}, uc.WrapError("validation failed", err)
	}

	if err := uc.themeRepo.Delete(ctx, cmd.ThemeID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return DeleteResult{}, fmt.Errorf("%w: %s", ErrThemeNotFound, cmd.ThemeID)
		}
		return DeleteResult{}, uc.WrapError("delete theme", err)
	}

	return DeleteResult{Deleted: true}, nil
}

// compile-time checks for the write-side use cases
var (
	_ appcore.UseCase[CreateThemeCommand, Result]       = (*CreateThemeUseCase)(nil)
	_ appcore.UseCase[UpdateThemeCommand, Result]       = (*UpdateThemeUseCase)(nil)
	_ appcore.UseCase[DeleteThemeCommand, DeleteResult] = (*DeleteThemeUseCase)(nil)
)
