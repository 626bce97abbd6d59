// Package activity contains the use cases of the activity service.
// Write operations verify the theme reference against the local theme
// projection, never against the theme service directly.
package activity

import (
	"time"

	"github.com/themery/themery/internal/domain/uuid"
)

// DetailsInput carries the descriptive attributes of an activity.
type DetailsInput struct {
	Description string
	URL         string
	Date        time.Time
}

// CreateActivityCommand creates an activity.
type CreateActivityCommand struct {
	ThemeID uuid.UUID
	Name    string
	Details DetailsInput
}

func (c CreateActivityCommand) CommandName() string { return "CreateActivity" }

// UpdateActivityCommand updates an existing activity.
type UpdateActivityCommand struct {
	ActivityID uuid.UUID
	ThemeID    uuid.UUID
	Name       string
	Details    DetailsInput
}

func (c UpdateActivityCommand) CommandName() string { return "UpdateActivity" }

// DeleteActivityCommand deletes an activity.
type DeleteActivityCommand struct {
	ActivityID uuid.UUID
}

func (c DeleteActivityCommand) CommandName() string { return "DeleteActivity" }
