// Package theme contains the use cases of the theme service. Write
// operations go through the aggregate so that every committed change has
// its replication event staged in the same transaction.
package theme

import (
	"time"

	"github.com/themery/themery/internal/domain/uuid"
)

// CreateThemeCommand creates a theme.
type CreateThemeCommand struct {
	Name          string
	Number        int
	Letter        string
	StartDate     time.Time
	EndDate       time.Time
	CreatedBy     string
	CorrelationID string
}

func (c CreateThemeCommand) CommandName() string { return "CreateTheme" }

// UpdateThemeCommand updates an existing theme.
type UpdateThemeCommand struct {
	ThemeID       uuid.UUID
	Name          string
	Number        int
	Letter        string
	StartDate     time.Time
	EndDate       time.Time
	ModifiedBy    string
	CorrelationID string
}

func (c UpdateThemeCommand) CommandName() string { return "UpdateTheme" }

// DeleteThemeCommand deletes a theme.
type DeleteThemeCommand struct {
	ThemeID       uuid.UUID
	CorrelationID string
}

func (c DeleteThemeCommand) CommandName() string { return "DeleteTheme" }
