// Package projection contains the consumer-side use cases that apply
// replicated theme events to the local projection store. Both operations
// are idempotent so that redelivered messages converge to the same state.
package projection

import "github.com/themery/themery/internal/domain/uuid"

// UpsertThemeCommand inserts or refreshes a projection row. It serves both
// theme.created and theme.updated deliveries: the row's final state depends
// only on the payload, not on which event carried it.
type UpsertThemeCommand struct {
	ThemeID uuid.UUID
	Name    string
}

func (c UpsertThemeCommand) CommandName() string { return "UpsertTheme" }

// RemoveThemeCommand removes a projection row.
type RemoveThemeCommand struct {
	ThemeID uuid.UUID
}

func (c RemoveThemeCommand) CommandName() string { return "RemoveTheme" }
