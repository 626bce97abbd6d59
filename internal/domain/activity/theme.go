package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/uuid"
)

// ThemeProjection is the local, replicated copy of the theme service's
// Theme record. It carries only what activities need to validate their
// theme reference: the owner-assigned identity and the display name.
// Rows are written exclusively by the replication dispatcher, never by
// user-facing operations.
type ThemeProjection struct {
	id   uuid.UUID
	name string
}

// NewThemeProjection creates a projection row from replicated fields.
func NewThemeProjection(id uuid.UUID, name string) (*ThemeProjection, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: theme id is required", errs.ErrInvalidInput)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: theme name is required", errs.ErrInvalidInput)
	}
	return &ThemeProjection{id: id, name: name}, nil
}

// ID returns the owner-assigned theme ID (the cross-service join key).
func (p *ThemeProjection) ID() uuid.UUID { return p.id }

// Name returns the replicated display name.
func (p *ThemeProjection) Name() string { return p.name }

// ThemeProjectionRepository is the local projection store. Upsert and
// delete are idempotent so that replaying a delivery converges to the
// same row state.
type ThemeProjectionRepository interface {
	// Upsert inserts the row or overwrites its name if it already exists.
	Upsert(ctx context.Context, p *ThemeProjection) error

	// Delete removes the row. A missing row is a no-op success.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID loads a projection row.
	FindByID(ctx context.Context, id uuid.UUID) (*ThemeProjection, error)

	// Exists reports whether a row exists for the given ID.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// List returns projection rows with pagination.
	List(ctx context.Context, offset, limit int) ([]*ThemeProjection, error)
}
