package appcore

import "context"

// UseCase is the base interface for all use cases.
// TCommand is the input type, TResult the output type.
type UseCase[TCommand any, TResult any] interface {
	// Execute runs the use case with the given command.
	Execute(ctx context.Context, cmd TCommand) (TResult, error)
}

// Command is the marker interface for commands (state changes).
type Command interface {
	CommandName() string
}

// Query is the marker interface for queries (read only).
type Query interface {
	QueryName() string
}

// Validator validates commands before execution.
type Validator[T any] interface {
	Validate(cmd T) error
}

// Result is the base result structure.
type Result[T any] struct {
	Value T
	Error error
}

// IsSuccess reports whether the operation completed successfully.
func (r Result[T]) IsSuccess() bool {
	return r.Error == nil
}

// IsFailure reports whether the operation failed.
func (r Result[T]) IsFailure() bool {
	return r.Error != nil
}
