// Package theme contains the authoritative Theme aggregate owned by the
// theme service. Replication to other services happens through the events
// the aggregate buffers; only id and name ever leave this service.
package theme

import (
	"fmt"
	"strings"
	"time"

	"github.com/themery/themery/internal/domain/errs"
	"github.com/themery/themery/internal/domain/event"
	"github.com/themery/themery/internal/domain/uuid"
)

// Validation bounds for theme fields.
const (
	MinNameLength = 2
	MaxNameLength = 150
	MinNumber     = 1
	MaxNumber     = 99
	LetterLength  = 2
)

// Theme is the authoritative aggregate. Identity is assigned at creation
// and never reassigned. Mutations buffer domain events; the buffer is
// drained by the persistence layer only after a successful commit.
type Theme struct {
	id         uuid.UUID
	name       string
	number     int
	letter     string
	startDate  time.Time
	endDate    time.Time
	createdBy  string
	createdAt  time.Time
	modifiedBy string
	modifiedAt time.Time

	events []event.DomainEvent
}

// NewTheme creates a theme, validates its fields and buffers a
// theme.created event.
func NewTheme(
	name string,
	number int,
	letter string,
	startDate, endDate time.Time,
	createdBy string,
	metadata event.Metadata,
) (*Theme, error) {
	if err := validateFields(name, number, letter, startDate, endDate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(createdBy) == "" {
		return nil, fmt.Errorf("%w: created_by is required", errs.ErrInvalidInput)
	}

	now := time.Now().UTC()
	t := &Theme{
		id:         uuid.NewUUID(),
		name:       strings.TrimSpace(name),
		number:     number,
		letter:     letter,
		startDate:  startDate,
		endDate:    endDate,
		createdBy:  createdBy,
		createdAt:  now,
		modifiedBy: createdBy,
		modifiedAt: now,
	}

	t.record(NewCreatedEvent(t, metadata))

	return t, nil
}

// Reconstruct rebuilds a theme from storage without validation and
// without buffering events.
func Reconstruct(
	id uuid.UUID,
	name string,
	number int,
	letter string,
	startDate, endDate time.Time,
	createdBy string,
	createdAt time.Time,
	modifiedBy string,
	modifiedAt time.Time,
) *Theme {
	return &Theme{
		id:         id,
		name:       name,
		number:     number,
		letter:     letter,
		startDate:  startDate,
		endDate:    endDate,
		createdBy:  createdBy,
		createdAt:  createdAt,
		modifiedBy: modifiedBy,
		modifiedAt: modifiedAt,
	}
}

// Update applies new field values and buffers a theme.updated event.
func (t *Theme) Update(
	name string,
	number int,
	letter string,
	startDate, endDate time.Time,
	modifiedBy string,
	metadata event.Metadata,
) error {
	if err := validateFields(name, number, letter, startDate, endDate); err != nil {
		return err
	}
	if strings.TrimSpace(modifiedBy) == "" {
		return fmt.Errorf("%w: modified_by is required", errs.ErrInvalidInput)
	}

	t.name = strings.TrimSpace(name)
	t.number = number
	t.letter = letter
	t.startDate = startDate
	t.endDate = endDate
	t.modifiedBy = modifiedBy
	t.modifiedAt = time.Now().UTC()

	t.record(NewUpdatedEvent(t, metadata))

	return nil
}

// record appends an event to the in-memory buffer.
func (t *Theme) record(evt event.DomainEvent) {
	t.events = append(t.events, evt)
}

// UncommittedEvents returns the buffered events in recording order.
func (t *Theme) UncommittedEvents() []event.DomainEvent {
	return t.events
}

// ClearEvents drains the buffer. Called by the persistence layer after the
// enclosing transaction has committed; never on rollback.
func (t *Theme) ClearEvents() {
	t.events = nil
}

// ID returns the theme ID.
func (t *Theme) ID() uuid.UUID { return t.id }

// Name returns the display name.
func (t *Theme) Name() string { return t.name }

// Number returns the theme number.
func (t *Theme) Number() int { return t.number }

// Letter returns the two-character theme letter.
func (t *Theme) Letter() string { return t.letter }

// StartDate returns the start date.
func (t *Theme) StartDate() time.Time { return t.startDate }

// EndDate returns the end date.
func (t *Theme) EndDate() time.Time { return t.endDate }

// CreatedBy returns who created the theme.
func (t *Theme) CreatedBy() string { return t.createdBy }

// CreatedAt returns the creation time.
func (t *Theme) CreatedAt() time.Time { return t.createdAt }

// ModifiedBy returns who last modified the theme.
func (t *Theme) ModifiedBy() string { return t.modifiedBy }

// ModifiedAt returns the last modification time.
func (t *Theme) ModifiedAt() time.Time { return t.modifiedAt }

func validateFields(name string, number int, letter string, startDate, endDate time.Time) error {
	name = strings.TrimSpace(name)
	if len(name) < MinNameLength || len(name) > MaxNameLength {
		return fmt.Errorf("%w: name must be between %d and %d characters",
			errs.ErrInvalidInput, MinNameLength, MaxNameLength)
	}
	if number < MinNumber || number > MaxNumber {
		return fmt.Errorf("%w: number must be between %d and %d",
			errs.ErrInvalidInput, MinNumber, MaxNumber)
	}
	if len(letter) != LetterLength {
		return fmt.Errorf("%w: letter must be exactly %d characters",
			errs.ErrInvalidInput, LetterLength)
	}
	if startDate.IsZero() || endDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", errs.ErrInvalidInput)
	}
	if endDate.Before(startDate) {
		return fmt.Errorf("%w: end date must not precede start date", errs.ErrInvalidInput)
	}
	return nil
}
