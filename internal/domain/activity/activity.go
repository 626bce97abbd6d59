// Package activity contains the consumer service's entities: the Activity
// aggregate and the replicated ThemeProjection it references.
package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/uuid"
)

// MaxNameLength bounds the activity display name.
const MaxNameLength = 150

// Details groups the descriptive attributes of an activity.
type Details struct {
	Description string
	URL         string
	Date        time.Time
}

// Activity is an event or engagement that belongs to a theme. Its themeID
// must resolve to an existing ThemeProjection row when the activity is
// created or retargeted; after that the reference is not re-verified, so a
// later theme deletion can leave it dangling (accepted data-quality
// tradeoff, not an error condition).
type Activity struct {
	id        uuid.UUID
	themeID   uuid.UUID
	name      string
	details   Details
	createdAt time.Time
	updatedAt time.Time
}

// NewActivity creates a validated activity.
func NewActivity(themeID uuid.UUID, name string, details Details) (*Activity, error) {
	if err := validate(themeID, name, details); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Activity{
		id:        uuid.NewUUID(),
		themeID:   themeID,
		name:      strings.TrimSpace(name),
		details:   details,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds an activity from storage without validation.
func Reconstruct(
	id, themeID uuid.UUID,
	name string,
	details Details,
	createdAt, updatedAt time.Time,
) *Activity {
	return &Activity{
		id:        id,
		themeID:   themeID,
		name:      name,
		details:   details,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Update applies new values to the activity.
func (a *Activity) Update(themeID uuid.UUID, name string, details Details) error {
	if err := validate(themeID, name, details); err != nil {
		return err
	}

	a.themeID = themeID
	a.name = strings.TrimSpace(name)
	a.details = details
	a.updatedAt = time.Now().UTC()
	return nil
}

// ID returns the activity ID.
func (a *Activity) ID() uuid.UUID { return a.id }

// ThemeID returns the referenced theme ID.
func (a *Activity) ThemeID() uuid.UUID { return a.themeID }

// Name returns the display name.
func (a *Activity) Name() string { return a.name }

// Details returns the descriptive attributes.
func (a *Activity) Details() Details { return a.details }

// CreatedAt returns the creation time.
func (a *Activity) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns the last update time.
func (a *Activity) UpdatedAt() time.Time { return a.updatedAt }

func validate(themeID uuid.UUID, name string, details Details) error {
	if themeID.IsZero() {
		return fmt.Errorf("%w: theme id is required", errs.ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", errs.ErrInvalidInput)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", errs.ErrInvalidInput, MaxNameLength)
	}
	if strings.TrimSpace(details.URL) == "" {
		return fmt.Errorf("%w: details url is required", errs.ErrInvalidInput)
	}
	return nil
}

// Repository persists activities.
type Repository interface {
	Save(ctx context.Context, a *Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*Activity, error)
	FindByName(ctx context.Context, name string) ([]*Activity, error)
	FindByThemeID(ctx context.Context, themeID uuid.UUID) ([]*Activity, error)
	List(ctx context.Context, offset, limit int) ([]*Activity, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
