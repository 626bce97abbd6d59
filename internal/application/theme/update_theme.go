package theme

import (
	"context"
	"errors"
	"fmt"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/event"
	"github.com/themery/themery/internal/domain/theme"
)

// UpdateThemeUseCase updates a theme. The resulting theme.updated event is
// staged with the document write in one transaction.
type UpdateThemeUseCase struct {
	appcore.BaseUseCase

	themeRepo theme.Repository
}

// NewUpdateThemeUseCase creates a new UpdateThemeUseCase.
func NewUpdateThemeUseCase(themeRepo theme.Repository) *UpdateThemeUseCase {
	return &UpdateThemeUseCase{themeRepo: themeRepo}
}

// Execute updates the theme.
func (uc *UpdateThemeUseCase) Execute(ctx context.Context, cmd UpdateThemeCommand) (Result, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return Result{}, uc.WrapError("validate context", err)
	}

	if err := uc.Validate(cmd); err != nil {
		return Result{}, uc.WrapError("validation failed", err)
	}

	t, err := uc.themeRepo.FindByID(ctx, cmd.ThemeID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %s", ErrThemeNotFound, cmd.ThemeID)
		}
		return Result{}, uc.WrapError("find theme", err)
	}

	metadata := event.NewMetadata(cmd.CorrelationID, "")
	if err = t.Update(cmd.Name, cmd.Number, cmd.Letter, cmd.StartDate, cmd.EndDate, cmd.ModifiedBy, metadata); err != nil {
		return Result{}, uc.WrapError("update theme entity", err)
	}

	if err = uc.themeRepo.Save(ctx, t); err != nil {
		return Result{}, uc.WrapError("save theme", err)
	}

	return Result{Result: appcore.Result[*theme.Theme]{Value: t}}, nil
}

// Validate checks command fields before touching the domain layer.
func (uc *UpdateThemeUseCase) Validate(cmd UpdateThemeCommand) error {
	if err := appcore.ValidateUUID("themeId", cmd.ThemeID); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("name", cmd.Name); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("modifiedBy", cmd.ModifiedBy); err != nil {
		return err
	}
	return nil
}
