// Package convert turns dissected string fields into numbers.
//
// Supported target types are "int" (64-bit, truncated toward zero) and
// "float" (64-bit). A conversion that fails leaves the field untouched and
// returns an *Error whose Kind selects the failure tag.
package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is a conversion target.
type Type uint8

const (
	// Int converts to int64. Fractions are truncated toward zero.
	Int Type = iota + 1

	// Float converts to float64.
	Float
)

// String returns the configuration name of the type
func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// ParseType parses a type name case-insensitively.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(name) {
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	default:
		return 0, &Error{Kind: UnsupportedType, Type: name}
	}
}

// ValueStore is the record a conversion reads from and writes to.
type ValueStore interface {
	Value(key string) (any, bool)
	SetValue(key string, value any)
}

// Convert replaces the value of key in store with its numeric form.
func Convert(store ValueStore, key string, t Type) error {
	raw, ok := store.Value(key)
	if !ok || raw == nil {
		return &Error{Kind: NullValue, Field: key, Type: t.String()}
	}

	if t != Int && t != Float {
		return &Error{Kind: UnsupportedType, Field: key, Type: t.String()}
	}

	if t == Int {
		if n, ok := exactInt(raw); ok {
			store.SetValue(key, n)
			return nil
		}
	}

	f, ok := toFloat(raw)
	if !ok {
		return &Error{Kind: Uncoercible, Field: key, Type: t.String(), Value: raw}
	}

	if t == Int {
		store.SetValue(key, truncate(f))
	} else {
		store.SetValue(key, f)
	}
	return nil
}

// Apply parses typeName and converts key.
func Apply(store ValueStore, key, typeName string) error {
	t, err := ParseType(typeName)
	if err != nil {
		return &Error{Kind: UnsupportedType, Field: key, Type: typeName}
	}
	return Convert(store, key, t)
}

// exactInt returns integer values without a float round trip, so integers
// beyond 2^53 keep every digit.
func exactInt(v any) (int64, bool) {
	switch v := v.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// toFloat accepts strings and numbers. Non-finite results are rejected so
// converted events stay JSON-encodable.
func toFloat(v any) (float64, bool) {
	var f float64
	switch v := v.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float64:
		f = v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// truncate converts toward zero, saturating at the int64 bounds.
func truncate(f float64) int64 {
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
