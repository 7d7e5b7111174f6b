package filter

import (
	"fmt"

	"github.com/coregx/dissect/convert"
)

// DefaultFailureTag is added to events that a mapping did not match.
const DefaultFailureTag = "_dissectfailure"

// Config configures a Filter.
//
// Mappings run in order, so a later mapping may dissect a field produced
// by an earlier one.
type Config struct {
	// Mapping lists the source field and candidate patterns of each mapping.
	Mapping []MappingConfig

	// ConvertDatatype lists fields converted to "int" or "float" after
	// dissection. Any other type is rejected by Validate.
	ConvertDatatype []Conversion

	// TagOnFailure is added to the event when a mapping fails.
	TagOnFailure []string

	// AddTag and AddField decorate events on which a mapping matched.
	AddTag   []string
	AddField map[string]string

	// Timestamp, when set, stamps matched events with the dissection time.
	Timestamp *TimestampConfig
}

// MappingConfig is one source field with its patterns, tried in order.
type MappingConfig struct {
	Source   string
	Patterns []string
}

// Conversion converts Field to Type.
type Conversion struct {
	Field string
	Type  string
}

// TimestampConfig writes the match time into Field using a strftime
// Format, e.g. "%Y-%m-%dT%H:%M:%S".
type TimestampConfig struct {
	Field  string
	Format string
}

// DefaultConfig returns a configuration with no mappings and the default
// failure tag.
func DefaultConfig() Config {
	return Config{
		TagOnFailure: []string{DefaultFailureTag},
	}
}

// Validate checks the configuration for structural errors.
//
// Patterns are compiled by New; Validate only checks that every name it
// needs is present.
func (c Config) Validate() error {
	for i, m := range c.Mapping {
		if m.Source == "" {
			return &ConfigError{
				Field:   fmt.Sprintf("Mapping[%d].Source", i),
				Message: "must not be empty",
			}
		}
	}

	for i, conv := range c.ConvertDatatype {
		if conv.Field == "" {
			return &ConfigError{
				Field:   fmt.Sprintf("ConvertDatatype[%d].Field", i),
				Message: "must not be empty",
			}
		}
		if _, err := convert.ParseType(conv.Type); err != nil {
			return &ConfigError{
				Field:   fmt.Sprintf("ConvertDatatype[%d].Type", i),
				Message: fmt.Sprintf("unsupported type %q for field %q, want int or float", conv.Type, conv.Field),
			}
		}
	}

	for i, tag := range c.TagOnFailure {
		if tag == "" {
			return &ConfigError{
				Field:   fmt.Sprintf("TagOnFailure[%d]", i),
				Message: "must not be empty",
			}
		}
	}

	for key := range c.AddField {
		if key == "" {
			return &ConfigError{Field: "AddField", Message: "keys must not be empty"}
		}
	}

	if ts := c.Timestamp; ts != nil {
		if ts.Field == "" {
			return &ConfigError{Field: "Timestamp.Field", Message: "must not be empty"}
		}
		if ts.Format == "" {
			return &ConfigError{Field: "Timestamp.Format", Message: "must not be empty"}
		}
	}

	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "dissect: invalid config: " + e.Field + ": " + e.Message
}
