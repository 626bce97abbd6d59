package theme

import (
	"context"
	"time"

	"github.com/themery/themery/internal/domain/uuid"
)

// Repository persists theme aggregates. Save must stage the aggregate's
// buffered events for publication atomically with the document write and
// drain the buffer only after the transaction commits.
type Repository interface {
	// Save persists the aggregate and its pending events atomically.
	Save(ctx context.Context, t *Theme) error

	// FindByID loads a theme by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Theme, error)

	// FindByName returns themes whose name matches exactly.
	FindByName(ctx context.Context, name string) ([]*Theme, error)

	// FindByDate returns themes whose start/end range contains the date.
	FindByDate(ctx context.Context, date time.Time) ([]*Theme, error)

	// List returns themes with pagination.
	List(ctx context.Context, offset, limit int) ([]*Theme, error)

	// Count returns the total number of themes.
	Count(ctx context.Context) (int, error)

	// Delete removes a theme document and stages its deletion event
	// atomically. Deletion bypasses the aggregate buffer.
	Delete(ctx context.Context, id uuid.UUID) error
}
