package theme

import (
	"context"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/theme"
)

// FindThemesByNameUseCase finds themes by exact name match.
type FindThemesByNameUseCase struct {
	appcore.BaseUseCase

	themeRepo theme.Repository
}

// NewFindThemesByNameUseCase creates a new FindThemesByNameUseCase.
func NewFindThemesByNameUseCase(themeRepo theme.Repository) *FindThemesByNameUseCase {
	return &FindThemesByNameUseCase{themeRepo: themeRepo}
}

// Execute finds themes with the given name.
func (uc *FindThemesByNameUseCase) Execute(ctx context.Context, query GetThemesByNameQuery) (ListResult, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return ListResult{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateRequired("name", query.Name); err != nil {
		return ListResult{}, uc.WrapError("validation failed", err)
	}

	themes, err := uc.themeRepo.FindByName(ctx, query.Name)
	if err != nil {
		return ListResult{}, uc.WrapError("find themes by name", err)
	}

	return ListResult{Themes: themes, TotalCount: len(themes)}, nil
}

// FindThemesByDateUseCase finds themes whose date range contains a date.
type FindThemesByDateUseCase struct {
	appcore.BaseUseCase

	themeRepo theme.Repository
}

// NewFindThemesByDateUseCase creates a new FindThemesByDateUseCase.
func NewFindThemesByDateUseCase(themeRepo theme.Repository) *FindThemesByDateUseCase {
	return &FindThemesByDateUseCase{themeRepo: themeRepo}
}

// Execute finds themes active on the given date.
func (uc *FindThemesByDateUseCase) Execute(ctx context.Context, query GetThemesByDateQuery) (ListResult, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return ListResult{}, uc.WrapError("validate context", err)
	}

	if query.Date.IsZero() {
		return ListResult{}, uc.WrapError("validation failed", appcore.NewValidationError("date", "is required"))
	}

	themes, err := uc.themeRepo.FindByDate(ctx, query.Date)
	if err != nil {
		return ListResult{}, uc.WrapError("find themes by date", err)
	}

	return ListResult{Themes: themes, TotalCount: len(themes)}, nil
}
