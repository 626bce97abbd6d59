package theme

import (
	"context"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/theme"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ListThemesUseCase lists themes with pagination.
type ListThemesUseCase struct {
	appcore.BaseUseCase

	themeRepo theme.Repository
}

// NewListThemesUseCase creates a new ListThemesUseCase.
func NewListThemesUseCase(themeRepo theme.Repository) *ListThemesUseCase {
	return &ListThemesUseCase{themeRepo: themeRepo}
}

// Execute lists themes.
func (uc *ListThemesUseCase) Execute(ctx context.Context, query ListThemesQuery) (ListResult, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return ListResult{}, uc.WrapError("validate context", err)
	}

	if err := appcore.ValidateNonNegative("offset", query.Offset); err != nil {
		return ListResult{}, uc.WrapError("validation failed", err)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	themes, err := uc.themeRepo.List(ctx, query.Offset, limit)
	if err != nil {
		return ListResult{}, uc.WrapError("list themes", err)
	}

	total, err := uc.themeRepo.Count(ctx)
	if err != nil {
		return ListResult{}, uc.WrapError("count themes", err)
	}

	return ListResult{
		Themes:     themes,
		TotalCount: total,
		Offset:     query.Offset,
		Limit:      limit,
	}, nil
}
