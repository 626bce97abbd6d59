// Package errs defines sentinel domain errors shared by both services.
package errs

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input data is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrThemeNotReplicated is returned when an activity references a theme
	// that has no local projection row yet (or anymore)
	ErrThemeNotReplicated = errors.New("theme is not known to this service")

	// ErrInvalidState is returned when an entity is in an invalid state
	ErrInvalidState = errors.New("invalid state")
)
