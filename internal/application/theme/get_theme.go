package theme

import (
	"context"
	"errors"
	"fmt"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/theme"
)

// GetThemeUseCase loads a single theme.
type GetThemeUseCase struct {
	appcore.BaseUseCase

	themeRepo theme.Repository
}

// NewGetThemeUseCase creates a new GetThemeUseCase.
func NewGetThemeUseCase(themeRepo theme.Repository) *GetThemeUseCase {
	return &GetThemeUseCase{themeRepo: themeRepo}
}

// Execute loads the theme by ID.
func (uc *GetThemeUseCase) Execute(ctx context.Context, query GetThemeQuery) (Result, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return Result{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateUUID("themeId", query.ThemeID); err != nil {
		return Result{}, uc.WrapError("validation failed", err)
	}

	t, err := uc.themeRepo.FindByID(ctx, query.ThemeID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %s", ErrThemeNotFound, query.ThemeID)
		}
		return Result{}, uc.WrapError("find theme", err)
	}

	return Result{Result: appcore.Result[*theme.Theme]{Value: t}}, nil
}
