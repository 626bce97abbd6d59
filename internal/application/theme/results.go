package theme

import (
	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/theme"
)

// Result is the outcome of a single-theme operation.
type Result struct {
	appcore.Result[*theme.Theme]
}

// DeleteResult is the outcome of a delete operation.
type DeleteResult struct {
	Deleted bool
}

// ListResult is the outcome of a list operation.
type ListResult struct {
	Themes     []*theme.Theme
	TotalCount int
	Offset     int
	Limit      int
}
