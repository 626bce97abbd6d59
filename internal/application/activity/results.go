package activity

import (
	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/activity"
)

// Result is the outcome of a single-activity operation.
type Result struct {
	appcore.Result[*activity.Activity]
}

// DeleteResult is the outcome of a delete operation.
type DeleteResult struct {
	Deleted bool
}

// ListResult is the outcome of an activity list operation.
type ListResult struct {
	Activities []*activity.Activity
	TotalCount int
	Offset     int
	Limit      int
}

// ProjectionListResult is the outcome of a theme projection list operation.
type ProjectionListResult struct {
	Themes []*activity.ThemeProjection
	Offset int
	Limit  int
}
