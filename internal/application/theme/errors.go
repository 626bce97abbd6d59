package theme

import (
	"fmt"

	"github.com/themery/themery/internal/domain/errs"
)

var (
	// ErrThemeNotFound is returned when a theme does not exist. It wraps
	// errs.ErrNotFound so transport layers can map it generically.
	ErrThemeNotFound = fmt.Errorf("theme %w", errs.ErrNotFound)
)
