// Package filter runs dissect mappings over events the way a log pipeline
// filter stage does.
//
// For every event and every configured mapping, the filter reads the source
// field, tries the mapping's patterns in order and writes the fields of the
// first one that matches. Failures are tagged and counted but never stop
// the event. After all mappings ran, datatype conversions are applied and
// matched events are decorated.
//
// Example:
//
//	cfg := filter.DefaultConfig()
//	cfg.Mapping = []filter.MappingConfig{
//	    {Source: "message", Patterns: []string{"%{ts} %{host} %{msg}"}},
//	}
//	f, err := filter.New(cfg, slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f.Apply(ev)
package filter

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/coregx/dissect"
	"github.com/coregx/dissect/convert"
	"github.com/coregx/dissect/event"
)

// Filter applies a set of mappings to events. It is safe for concurrent use
// as long as each event is handled by one goroutine.
type Filter struct {
	mappings    []compiledMapping
	conversions []Conversion
	failureTags []string
	addTag      []string
	addField    map[string]string

	stampField string
	stamp      *strftime.Strftime
	now        func() time.Time

	logger *slog.Logger

	matches  atomic.Uint64
	failures atomic.Uint64
}

type compiledMapping struct {
	source string
	set    *dissect.Set
}

// Stats holds the filter counters.
type Stats struct {
	Matches  uint64 // mappings that matched
	Failures uint64 // mappings that were missing, empty or did not match
}

// New validates cfg and compiles its mappings. A nil logger means
// slog.Default().
//
// Empty patterns are ignored, and a mapping left without patterns is
// dropped.
func New(cfg Config, logger *slog.Logger) (*Filter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &Filter{
		conversions: cfg.ConvertDatatype,
		failureTags: cfg.TagOnFailure,
		addTag:      cfg.AddTag,
		addField:    cfg.AddField,
		now:         time.Now,
		logger:      logger,
	}

	for _, m := range cfg.Mapping {
		patterns := make([]string, 0, len(m.Patterns))
		for _, p := range m.Patterns {
			if p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) == 0 {
			continue
		}
		set, err := dissect.NewSet(patterns...)
		if err != nil {
			return nil, err
		}
		f.mappings = append(f.mappings, compiledMapping{source: m.Source, set: set})
	}

	if ts := cfg.Timestamp; ts != nil {
		stamp, err := strftime.New(ts.Format)
		if err != nil {
			return nil, &ConfigError{Field: "Timestamp.Format", Message: err.Error()}
		}
		f.stampField = ts.Field
		f.stamp = stamp
	}

	return f, nil
}

// Apply runs every mapping over ev and reports whether all of them matched.
func (f *Filter) Apply(ev *event.Event) bool {
	f.logger.Debug("event before dissection", slog.Any("event", ev.Fields()))

	all := true
	matched := false
	for _, m := range f.mappings {
		if !ev.Contains(m.source) {
			f.failures.Add(1)
			f.logger.Warn("dissector mapping, key not found in event", slog.String("key", m.source))
			all = false
			continue
		}

		src := ev.Get(m.source)
		if src == "" {
			f.logger.Warn("dissector mapping, key found in event but it was empty", slog.String("key", m.source))
			f.fail(ev)
			all = false
			continue
		}

		idx, res := m.set.DissectString(src, ev)
		if res.NotMatched() {
			f.logger.Warn("dissector mapping, pattern not found",
				slog.String("key", m.source),
				slog.Int("patterns", m.set.Len()))
			f.fail(ev)
			all = false
			continue
		}

		f.matches.Add(1)
		matched = true
		f.logger.Debug("dissector mapping matched",
			slog.String("key", m.source),
			slog.String("pattern", m.set.Dissector(idx).String()))
	}

	f.convert(ev)
	if matched {
		f.decorate(ev)
	}

	f.logger.Debug("event after dissection", slog.Any("event", ev.Fields()))
	return all
}

// ApplyAll applies the filter to every event and returns how many matched
// all mappings.
func (f *Filter) ApplyAll(events []*event.Event) int {
	n := 0
	for _, ev := range events {
		if f.Apply(ev) {
			n++
		}
	}
	return n
}

// Stats returns a snapshot of the counters.
func (f *Filter) Stats() Stats {
	return Stats{
		Matches:  f.matches.Load(),
		Failures: f.failures.Load(),
	}
}

// ResetStats zeroes the counters.
func (f *Filter) ResetStats() {
	f.matches.Store(0)
	f.failures.Store(0)
}

func (f *Filter) fail(ev *event.Event) {
	f.failures.Add(1)
	ev.Tag(f.failureTags...)
}

func (f *Filter) convert(ev *event.Event) {
	for _, c := range f.conversions {
		err := convert.Apply(ev, c.Field, c.Type)
		if err == nil {
			continue
		}
		ev.Tag(convert.TagFor(err))
		f.logger.Warn("dissector datatype conversion failed",
			slog.String("key", c.Field),
			slog.String("type", c.Type),
			slog.Any("error", err))
	}
}

func (f *Filter) decorate(ev *event.Event) {
	ev.Tag(f.addTag...)
	for k, v := range f.addField {
		ev.Set(k, v)
	}
	if f.stamp != nil {
		ev.Set(f.stampField, f.stamp.FormatString(f.now()))
	}
}
