package convert

import (
	"errors"
	"fmt"
)

// ErrorKind classifies conversion failures.
type ErrorKind uint8

const (
	// UnsupportedType means the target type name is unknown.
	UnsupportedType ErrorKind = iota

	// Uncoercible means the value is not a number.
	Uncoercible

	// NullValue means the field is absent or nil.
	NullValue
)

// String returns a human-readable kind name
func (k ErrorKind) String() string {
	switch k {
	case UnsupportedType:
		return "UnsupportedType"
	case Uncoercible:
		return "Uncoercible"
	case NullValue:
		return "NullValue"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// Error is a failed conversion.
type Error struct {
	Kind  ErrorKind
	Field string
	Type  string
	Value any // offending value, Uncoercible only
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case UnsupportedType:
		return fmt.Sprintf("datatype not supported: %s", e.Type)
	case NullValue:
		return fmt.Sprintf("value is null, key: %s, type: %s", e.Field, e.Type)
	default:
		return fmt.Sprintf("value cannot be coerced, key: %s, value: %v, type: %s", e.Field, e.Value, e.Type)
	}
}

// TagFor returns the event tag for a conversion failure, or "" when err is
// not an *Error.
func TagFor(err error) string {
	var ce *Error
	if !errors.As(err, &ce) {
		return ""
	}
	switch ce.Kind {
	case NullValue:
		return fmt.Sprintf("_dataconversionnullvalue_%s_%s", ce.Field, ce.Type)
	case Uncoercible:
		return fmt.Sprintf("_dataconversionuncoercible_%s_%s", ce.Field, ce.Type)
	default:
		return fmt.Sprintf("_dataconversionmissing_%s_%s", ce.Field, ce.Type)
	}
}
