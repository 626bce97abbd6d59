package activity

import "github.com/themery/themery/internal/domain/uuid"

// GetActivityQuery loads an activity by ID.
type GetActivityQuery struct {
	ActivityID uuid.UUID
}

func (q GetActivityQuery) QueryName() string { return "GetActivity" }

// GetActivitiesByNameQuery finds activities by exact name.
type GetActivitiesByNameQuery struct {
	Name string
}

func (q GetActivitiesByNameQuery) QueryName() string { return "GetActivitiesByName" }

// GetActivitiesByThemeQuery finds activities that reference a theme.
type GetActivitiesByThemeQuery struct {
	ThemeID uuid.UUID
}

func (q GetActivitiesByThemeQuery) QueryName() string { return "GetActivitiesByTheme" }

// ListActivitiesQuery lists activities with pagination.
type ListActivitiesQuery struct {
	Offset int
	Limit  int
}

func (q ListActivitiesQuery) QueryName() string { return "ListActivities" }

// ListThemeProjectionsQuery lists locally replicated themes.
type ListThemeProjectionsQuery struct {
	Offset int
	Limit  int
}

func (q ListThemeProjectionsQuery) QueryName() string { return "ListThemeProjections" }
