package theme

import (
	"time"

	"github.com/themery/themery/internal/domain/uuid"
)

// GetThemeQuery loads a theme by ID.
type GetThemeQuery struct {
	ThemeID uuid.UUID
}

func (q GetThemeQuery) QueryName() string { return "GetTheme" }

// GetThemesByNameQuery finds themes by exact name.
type GetThemesByNameQuery struct {
	Name string
}

func (q GetThemesByNameQuery) QueryName() string { return "GetThemesByName" }

// GetThemesByDateQuery finds themes whose date range contains the date.
type GetThemesByDateQuery struct {
	Date time.Time
}

func (q GetThemesByDateQuery) QueryName() string { return "GetThemesByDate" }

// ListThemesQuery lists themes with pagination.
type ListThemesQuery struct {
	Offset int
	Limit  int
}

func (q ListThemesQuery) QueryName() string { return "ListThemes" }
