package points

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by the point adapter.
var (
	// ErrInvalidInput is returned when a point container has the wrong
	// shape, or when a single point is required and a batch was given.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAmbiguousColumn is returned when a column prefix resolves under
	// both split naming conventions at once.
	ErrAmbiguousColumn = errors.New("ambiguous column")

	// ErrColumnNotFound is returned when a column resolves neither directly
	// nor as split position columns.
	ErrColumnNotFound = errors.New("column not found")
)

// ColumnError records the column name that failed to resolve.
type ColumnError struct {
	Column string
	Err    error
}

// Error returns the column name together with the wrapped error.
func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q: %v", e.Column, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ColumnError) Unwrap() error { return e.Err }
