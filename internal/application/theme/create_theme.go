package theme

import (
	"context"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/event"
	"github.com/themery/themery/internal/domain/theme"
)

// CreateThemeUseCase creates a theme. The repository stages the resulting
// theme.created event in the same transaction as the document write.
type CreateThemeUseCase struct {
	appcore.BaseUseCase

	themeRepo theme.Repository
}

// NewCreateThemeUseCase creates a new CreateThemeUseCase.
func NewCreateThemeUseCase(themeRepo theme.Repository) *CreateThemeUseCase {
	return &CreateThemeUseCase{themeRepo: themeRepo}
}

// Execute creates the theme.
func (uc *CreateThemeUseCase) Execute(ctx context.Context, cmd CreateThemeCommand) (Result, error) {
	if err := uc.ValidateContext(ctx); err != nil {
		return Result{}, uc.WrapError("validate context", err)
	}

	if err := uc.Validate(cmd); err != nil {
		return Result{}, uc.WrapError("validation failed", err)
	}

	metadata := event.NewMetadata(cmd.CorrelationID, "")
	t, err := theme.NewTheme(cmd.Name, cmd.Number, cmd.Letter, cmd.StartDate, cmd.EndDate, cmd.CreatedBy, metadata)
	if err != nil {
		return Result{}, uc.WrapError("create theme entity", err)
	}

	if err = uc.themeRepo.Save(ctx, t); err != nil {
		return Result{}, uc.WrapError("save theme", err)
	}

	return Result{Result: appcore.Result[*theme.Theme]{Value: t}}, nil
}

// Validate checks command fields before touching the domain layer.
func (uc *CreateThemeUseCase) Validate(cmd CreateThemeCommand) error {
	if err := appcore.ValidateRequired("name", cmd.Name); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("createdBy", cmd.CreatedBy); err != nil {
		return err
	}
	return nil
}
