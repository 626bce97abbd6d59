package activity

import (
	"fmt"

	"github.com/themery/themery/internal/domain/errs"
)

var (
	// ErrActivityNotFound is returned when an activity does not exist. It
	// wraps errs.ErrNotFound so transport layers can map it generically.
	ErrActivityNotFound = fmt.Errorf("activity %w", errs.ErrNotFound)
)
