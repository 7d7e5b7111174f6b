package field

import (
	"errors"
	"fmt"
)

// Field syntax errors.
var (
	// ErrMixedPrefix is returned for a field carrying both '+' and '&'.
	ErrMixedPrefix = errors.New("field cannot prefix with both append and indirect")

	// ErrPrefixWithoutName is returned for a '+' or '&' prefix with no name.
	ErrPrefixWithoutName = errors.New("field cannot be a prefix on its own without further text")

	// ErrInvalidOrder is returned for a /N order suffix too large for an int.
	ErrInvalidOrder = errors.New("invalid append order")
)

// SyntaxError reports a malformed field specification.
type SyntaxError struct {
	Spec string // text between %{ and }
	Err  error
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("field %%{%s}: %v", e.Spec, e.Err)
}

// Unwrap returns the underlying sentinel
func (e *SyntaxError) Unwrap() error {
	return e.Err
}
