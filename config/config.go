// Package config loads dissect filter settings from YAML.
//
//	mapping:
//	  message: "%{ts} %{+ts} %{host} %{program}[%{pid}]: %{msg}"
//	  msg: ["%{verb} %{path}", "%{reason}"]
//	convert_datatype:
//	  pid: int
//	tag_on_failure: [_dissectfailure]
//	add_tag: [syslog]
//	add_field: {pipeline: edge}
//	timestamp: {field: "@dissected_at", format: "%Y-%m-%dT%H:%M:%S"}
//	postgres: {dsn: "postgres://localhost/logs?sslmode=disable", table: dissected_events}
//
// Entries of mapping and convert_datatype keep their document order, so a
// later mapping may dissect a field written by an earlier one.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/coregx/dissect/filter"
)

// Config is a parsed configuration file.
type Config struct {
	Filter   filter.Config
	Postgres Postgres
}

// Postgres configures the optional event sink. An empty DSN disables it.
type Postgres struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// Enabled reports whether a DSN is set.
func (p Postgres) Enabled() bool { return p.DSN != "" }

type rawConfig struct {
	Mapping         yaml.Node         `yaml:"mapping"`
	ConvertDatatype yaml.Node         `yaml:"convert_datatype"`
	TagOnFailure    *[]string         `yaml:"tag_on_failure"`
	AddTag          []string          `yaml:"add_tag"`
	AddField        map[string]string `yaml:"add_field"`
	Timestamp       *rawTimestamp     `yaml:"timestamp"`
	Postgres        Postgres          `yaml:"postgres"`
}

type rawTimestamp struct {
	Field  string `yaml:"field"`
	Format string `yaml:"format"`
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Parse decodes a YAML document and validates the filter settings.
// Unknown keys are rejected. An omitted tag_on_failure selects
// filter.DefaultFailureTag; an explicit empty list disables tagging.
func Parse(b []byte) (*Config, error) {
	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "config: parse")
	}

	cfg := &Config{
		Filter:   filter.DefaultConfig(),
		Postgres: raw.Postgres,
	}

	mappings, err := parseMappings(&raw.Mapping)
	if err != nil {
		return nil, err
	}
	cfg.Filter.Mapping = mappings

	conversions, err := parseConversions(&raw.ConvertDatatype)
	if err != nil {
		return nil, err
	}
	cfg.Filter.ConvertDatatype = conversions

	if raw.TagOnFailure != nil {
		cfg.Filter.TagOnFailure = *raw.TagOnFailure
	}
	cfg.Filter.AddTag = raw.AddTag
	cfg.Filter.AddField = raw.AddField
	if ts := raw.Timestamp; ts != nil {
		cfg.Filter.Timestamp = &filter.TimestampConfig{Field: ts.Field, Format: ts.Format}
	}

	if err := cfg.Filter.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return cfg, nil
}

// parseMappings reads "source: pattern" or "source: [patterns...]" pairs in
// document order.
func parseMappings(node *yaml.Node) ([]filter.MappingConfig, error) {
	if isEmpty(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Errorf("config: line %d: mapping must be a map of source field to patterns", node.Line)
	}

	out := make([]filter.MappingConfig, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]

		var source string
		if err := key.Decode(&source); err != nil {
			return nil, errors.Wrapf(err, "config: line %d: mapping key", key.Line)
		}

		var patterns []string
		switch val.Kind {
		case yaml.ScalarNode:
			var p string
			if err := val.Decode(&p); err != nil {
				return nil, errors.Wrapf(err, "config: line %d: mapping %q", val.Line, source)
			}
			patterns = []string{p}
		case yaml.SequenceNode:
			if err := val.Decode(&patterns); err != nil {
				return nil, errors.Wrapf(err, "config: line %d: mapping %q", val.Line, source)
			}
		default:
			return nil, errors.Errorf("config: line %d: mapping %q must be a pattern or a list of patterns", val.Line, source)
		}

		out = append(out, filter.MappingConfig{Source: source, Patterns: patterns})
	}
	return out, nil
}

func parseConversions(node *yaml.Node) ([]filter.Conversion, error) {
	if isEmpty(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Errorf("config: line %d: convert_datatype must be a map of field to type", node.Line)
	}

	out := make([]filter.Conversion, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var c filter.Conversion
		if err := node.Content[i].Decode(&c.Field); err != nil {
			return nil, errors.Wrapf(err, "config: line %d: convert_datatype key", node.Content[i].Line)
		}
		if err := node.Content[i+1].Decode(&c.Type); err != nil {
			return nil, errors.Wrapf(err, "config: line %d: convert_datatype %q", node.Content[i+1].Line, c.Field)
		}
		out = append(out, c)
	}
	return out, nil
}

// isEmpty reports whether a section was omitted or left blank.
func isEmpty(node *yaml.Node) bool {
	return node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}
