package dataset

import (
	"errors"
	"fmt"
)

// Dataset errors.
var (
	ErrMalformed     = errors.New("malformed dataset")
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyDataset  = errors.New("dataset has no header row")
)

// RowError describes a malformed field. It matches ErrMalformed with errors.Is.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %q: %v", e.Line, e.Column, e.Err)
}

// Unwrap exposes both ErrMalformed and the underlying cause.
func (e *RowError) Unwrap() []error {
	return []error{ErrMalformed, e.Err}
}
