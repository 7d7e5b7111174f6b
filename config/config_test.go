package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/dissect/filter"
)

const sample = `
mapping:
  message: "%{ts} %{+ts} %{host} %{program}[%{pid}]: %{msg}"
  msg: ["%{verb} %{path}", "%{reason}"]
convert_datatype:
  pid: int
  ratio: float
add_tag: [syslog]
add_field: {pipeline: edge}
timestamp: {field: "@dissected_at", format: "%Y-%m-%dT%H:%M:%S"}
postgres:
  dsn: postgres://localhost/logs?sslmode=disable
  table: events
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, []filter.MappingConfig{
		{Source: "message", Patterns: []string{"%{ts} %{+ts} %{host} %{program}[%{pid}]: %{msg}"}},
		{Source: "msg", Patterns: []string{"%{verb} %{path}", "%{reason}"}},
	}, cfg.Filter.Mapping)
	assert.Equal(t, []filter.Conversion{
		{Field: "pid", Type: "int"},
		{Field: "ratio", Type: "float"},
	}, cfg.Filter.ConvertDatatype)
	assert.Equal(t, []string{filter.DefaultFailureTag}, cfg.Filter.TagOnFailure)
	assert.Equal(t, []string{"syslog"}, cfg.Filter.AddTag)
	assert.Equal(t, map[string]string{"pipeline": "edge"}, cfg.Filter.AddField)
	assert.Equal(t, &filter.TimestampConfig{Field: "@dissected_at", Format: "%Y-%m-%dT%H:%M:%S"}, cfg.Filter.Timestamp)

	assert.True(t, cfg.Postgres.Enabled())
	assert.Equal(t, "events", cfg.Postgres.Table)
}

// TestParseKeepsMappingOrder checks that keys are not sorted
func TestParseKeepsMappingOrder(t *testing.T) {
	cfg, err := Parse([]byte("mapping:\n  zeta: \"%{a}\"\n  alpha: \"%{b}\"\n  mid: \"%{c}\"\n"))
	require.NoError(t, err)

	var sources []string
	for _, m := range cfg.Filter.Mapping {
		sources = append(sources, m.Source)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, sources)
}

func TestParseTagOnFailure(t *testing.T) {
	cfg, err := Parse([]byte("tag_on_failure: []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Filter.TagOnFailure)

	cfg, err = Parse([]byte("tag_on_failure: [_a, _b]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"_a", "_b"}, cfg.Filter.TagOnFailure)
}

func TestParseEmpty(t *testing.T) {
	for _, doc := range []string{"", "mapping:\nconvert_datatype:\n"} {
		cfg, err := Parse([]byte(doc))
		require.NoError(t, err, "doc %q", doc)
		assert.Empty(t, cfg.Filter.Mapping)
		assert.Empty(t, cfg.Filter.ConvertDatatype)
		assert.False(t, cfg.Postgres.Enabled())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad_yaml", "mapping: [", "config: parse"},
		{"unknown_key", "mappings: {}\n", "config: parse"},
		{"mapping_not_map", "mapping: [a, b]\n", "mapping must be a map"},
		{"mapping_value_map", "mapping:\n  message: {a: b}\n", `mapping "message" must be a pattern`},
		{"conversion_not_map", "convert_datatype: [pid]\n", "convert_datatype must be a map"},
		{"conversion_unknown_type", "convert_datatype: {pid: integer}\n", "ConvertDatatype[0].Type"},
		{"empty_tag", "tag_on_failure: [\"\"]\n", "TagOnFailure[0]"},
		{"timestamp_without_format", "timestamp: {field: ts}\n", "Timestamp.Format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseValidationErrorIsConfigError(t *testing.T) {
	_, err := Parse([]byte("mapping:\n  \"\": \"%{a}\"\n"))
	var ce *filter.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Mapping[0].Source", ce.Field)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dissect.yml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Filter.Mapping, 2)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
