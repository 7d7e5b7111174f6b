package mapping

import (
	"errors"
	"fmt"
)

// ErrEmptyMapping is returned when compiling an empty pattern.
var ErrEmptyMapping = errors.New("mapping cannot be empty")

// InvalidMappingError reports a pattern that cannot be compiled.
//
// Err is ErrEmptyMapping or a *field.SyntaxError; errors.Is matches the
// field sentinels through it.
type InvalidMappingError struct {
	Pattern string
	Field   string // offending field text, empty for pattern-level errors
	Err     error
}

// Error implements the error interface
func (e *InvalidMappingError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("invalid dissect mapping %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("invalid dissect mapping: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *InvalidMappingError) Unwrap() error {
	return e.Err
}
