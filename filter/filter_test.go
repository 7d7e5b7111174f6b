package filter

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/dissect"
	"github.com/coregx/dissect/event"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFilter(t *testing.T, cfg Config) *Filter {
	t.Helper()
	f, err := New(cfg, discard())
	require.NoError(t, err)
	return f
}

func message(s string) *event.Event {
	return event.FromMap(map[string]any{"message": s})
}

func TestApplyMatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping = []MappingConfig{
		{Source: "message", Patterns: []string{"%{a} %{b} %{c}"}},
	}
	f := newFilter(t, cfg)

	ev := message("foo bar baz")
	assert.True(t, f.Apply(ev))
	assert.Equal(t, "foo", ev.Get("a"))
	assert.Equal(t, "bar", ev.Get("b"))
	assert.Equal(t, "baz", ev.Get("c"))
	assert.Empty(t, ev.Tags())
	assert.Equal(t, Stats{Matches: 1}, f.Stats())
}

func TestApplyFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping = []MappingConfig{
		{Source: "message", Patterns: []string{"%{a} %{b} %{c}"}},
	}
	f := newFilter(t, cfg)

	t.Run("no_match_tags", func(t *testing.T) {
		f.ResetStats()
		ev := message("foo:bar:baz")
		assert.False(t, f.Apply(ev))
		assert.Equal(t, []string{DefaultFailureTag}, ev.Tags())
		assert.Equal(t, 1, ev.Len(), "no field may be written on failure")
		assert.Equal(t, Stats{Failures: 1}, f.Stats())
	})

	t.Run("empty_source_tags", func(t *testing.T) {
		f.ResetStats()
		ev := message("")
		assert.False(t, f.Apply(ev))
		assert.True(t, ev.HasTag(DefaultFailureTag))
		assert.Equal(t, Stats{Failures: 1}, f.Stats())
	})

	t.Run("missing_source_counts_without_tag", func(t *testing.T) {
		f.ResetStats()
		ev := event.FromMap(map[string]any{"other": "foo bar baz"})
		assert.False(t, f.Apply(ev))
		assert.Empty(t, ev.Tags())
		assert.Equal(t, Stats{Failures: 1}, f.Stats())
	})
}

func TestCustomFailureTags(t *testing.T) {
	cfg := Config{
		Mapping:      []MappingConfig{{Source: "message", Patterns: []string{"%{a}|%{b}"}}},
		TagOnFailure: []string{"_custom", "_other"},
	}
	f := newFilter(t, cfg)

	ev := message("nope")
	f.Apply(ev)
	assert.Equal(t, []string{"_custom", "_other"}, ev.Tags())
}

// TestChainedMappings checks that a later mapping sees earlier output
func TestChainedMappings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping = []MappingConfig{
		{Source: "message", Patterns: []string{"%{ts} %{host} %{rest}"}},
		{Source: "rest", Patterns: []string{"%{verb} %{path} HTTP/%{version}", "%{reason}"}},
	}
	f := newFilter(t, cfg)

	ev := message("10:00 web-1 GET /index.html HTTP/1.1")
	require.True(t, f.Apply(ev))
	assert.Equal(t, "GET", ev.Get("verb"))
	assert.Equal(t, "/index.html", ev.Get("path"))
	assert.Equal(t, "1.1", ev.Get("version"))
	assert.Equal(t, Stats{Matches: 2}, f.Stats())

	ev = message("10:01 web-1 restarting")
	require.True(t, f.Apply(ev))
	assert.Equal(t, "restarting", ev.Get("reason"))
	assert.False(t, ev.Contains("verb"))
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping = []MappingConfig{
		{Source: "message", Patterns: []string{"%{pid} %{ratio} %{name}"}},
	}
	cfg.ConvertDatatype = []Conversion{
		{Field: "pid", Type: "int"},
		{Field: "ratio", Type: "float"},
		{Field: "name", Type: "int"},
		{Field: "absent", Type: "float"},
	}
	f := newFilter(t, cfg)

	ev := message("123 0.75 web")
	assert.True(t, f.Apply(ev))

	pid, _ := ev.Value("pid")
	ratio, _ := ev.Value("ratio")
	assert.Equal(t, int64(123), pid)
	assert.Equal(t, 0.75, ratio)
	assert.Equal(t, "web", ev.Get("name"))
	assert.Equal(t, []string{
		"_dataconversionuncoercible_name_int",
		"_dataconversionnullvalue_absent_float",
	}, ev.Tags())
}

// TestConversionsRunOnFailure checks that conversions run even without a match
func TestConversionsRunOnFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping = []MappingConfig{{Source: "message", Patterns: []string{"%{a} %{b}"}}}
	cfg.ConvertDatatype = []Conversion{{Field: "size", Type: "int"}}
	f := newFilter(t, cfg)

	ev := event.FromMap(map[string]any{"message": "nomatch", "size": "12"})
	assert.False(t, f.Apply(ev))
	size, _ := ev.Value("size")
	assert.Equal(t, int64(12), size)
}

func TestDecorations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping = []MappingConfig{{Source: "message", Patterns: []string{"%{a} %{b}"}}}
	cfg.AddTag = []string{"dissected"}
	cfg.AddField = map[string]string{"pipeline": "syslog"}
	cfg.Timestamp = &TimestampConfig{Field: "@dissected_at", Format: "%Y-%m-%d %H:%M"}
	f := newFilter(t, cfg)
	f.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }

	ev := message("x y")
	require.True(t, f.Apply(ev))
	assert.Equal(t, []string{"dissected"}, ev.Tags())
	assert.Equal(t, "syslog", ev.Get("pipeline"))
	assert.Equal(t, "2026-10-17 09:30", ev.Get("@dissected_at"))

	ev = message("nospace")
	require.False(t, f.Apply(ev))
	assert.False(t, ev.HasTag("dissected"))
	assert.False(t, ev.Contains("@dissected_at"))
}

func TestApplyAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping = []MappingConfig{{Source: "message", Patterns: []string{"%{a}=%{b}"}}}
	f := newFilter(t, cfg)

	events := []*event.Event{message("k=v"), message("bad"), message("x=y")}
	assert.Equal(t, 2, f.ApplyAll(events))
	assert.Equal(t, Stats{Matches: 2, Failures: 1}, f.Stats())
}

func TestEmptyPatternsIgnored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping = []MappingConfig{
		{Source: "message", Patterns: []string{""}},
		{Source: "message", Patterns: []string{"", "%{a}"}},
	}
	f := newFilter(t, cfg)
	require.Len(t, f.mappings, 1)

	ev := message("whole")
	assert.True(t, f.Apply(ev))
	assert.Equal(t, "whole", ev.Get("a"))
}

func TestWarnLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := DefaultConfig()
	cfg.Mapping = []MappingConfig{{Source: "message", Patterns: []string{"%{a} %{b}"}}}
	f, err := New(cfg, logger)
	require.NoError(t, err)

	f.Apply(event.New())
	assert.Contains(t, buf.String(), "key not found in event")
	assert.Contains(t, buf.String(), "key=message")

	buf.Reset()
	f.Apply(message("x"))
	assert.Contains(t, buf.String(), "pattern not found")
}

func TestNewErrors(t *testing.T) {
	t.Run("invalid_pattern", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mapping = []MappingConfig{{Source: "message", Patterns: []string{"%{+&a}"}}}
		_, err := New(cfg, nil)
		assert.True(t, errors.Is(err, dissect.ErrMixedPrefix))
	})

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"empty_source", Config{Mapping: []MappingConfig{{Patterns: []string{"%{a}"}}}}, "Mapping[0].Source"},
		{"empty_conversion_field", Config{ConvertDatatype: []Conversion{{Type: "int"}}}, "ConvertDatatype[0].Field"},
		{"unsupported_conversion_type", Config{ConvertDatatype: []Conversion{{Field: "pid", Type: "int"}, {Field: "size", Type: "integer"}}}, "ConvertDatatype[1].Type"},
		{"empty_tag", Config{TagOnFailure: []string{"ok", ""}}, "TagOnFailure[1]"},
		{"empty_add_field_key", Config{AddField: map[string]string{"": "v"}}, "AddField"},
		{"timestamp_field", Config{Timestamp: &TimestampConfig{Format: "%Y"}}, "Timestamp.Field"},
		{"timestamp_format", Config{Timestamp: &TimestampConfig{Field: "ts"}}, "Timestamp.Format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, err.Error(), "dissect: invalid config: "+tt.field)
		})
	}
}
