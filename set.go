package dissect

import "github.com/coregx/ahocorasick"

// Set is an ordered list of dissectors tried against the same source until
// one matches.
//
// With more than one mapping, Set builds a single Aho-Corasick automaton over
// the delimiters of all mappings. One pass over the source tells which
// delimiters occur in it, and a mapping is scanned only when all of its
// delimiters do. A mapping cannot match without all of its delimiters, so
// the prefilter never hides a match.
//
// A Set is safe for concurrent use.
type Set struct {
	dissectors []*Dissector

	auto     *ahocorasick.Automaton // nil when prefiltering is off
	literals [][]byte               // distinct delimiters, indexed by pattern id
	required [][]int                // literal ids needed by each dissector
}

// NewSet compiles patterns into a Set. It fails on the first pattern that
// does not compile.
//
// Example:
//
//	s, err := dissect.NewSet(
//	    "%{ts} %{host} sshd[%{pid}]: %{msg}",
//	    "%{ts} %{host} %{msg}",
//	)
func NewSet(patterns ...string) (*Set, error) {
	s := &Set{dissectors: make([]*Dissector, 0, len(patterns))}
	for _, p := range patterns {
		d, err := Compile(p)
		if err != nil {
			return nil, err
		}
		s.dissectors = append(s.dissectors, d)
	}

	if len(s.dissectors) > 1 {
		if err := s.buildPrefilter(); err != nil {
			// Scanning every mapping is always correct.
			s.auto = nil
		}
	}
	return s, nil
}

// MustNewSet is like NewSet but panics on error.
func MustNewSet(patterns ...string) *Set {
	s, err := NewSet(patterns...)
	if err != nil {
		panic("dissect: NewSet: " + err.Error())
	}
	return s
}

func (s *Set) buildPrefilter() error {
	ids := make(map[string]int)
	s.required = make([][]int, len(s.dissectors))
	for i, d := range s.dissectors {
		for _, dl := range d.mapping.Delimiters() {
			id, ok := ids[dl.String()]
			if !ok {
				id = len(s.literals)
				ids[dl.String()] = id
				s.literals = append(s.literals, dl.Bytes())
			}
			s.required[i] = append(s.required[i], id)
		}
	}
	if len(s.literals) == 0 {
		return nil
	}

	builder := ahocorasick.NewBuilder()
	for _, lit := range s.literals {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return err
	}
	s.auto = auto
	return nil
}

// present marks which delimiters occur in source. Overlapping matches are
// reported, so a delimiter nested inside a longer one is found as well as
// the longer one.
func (s *Set) present(source []byte) []bool {
	seen := make([]bool, len(s.literals))
	for _, m := range s.auto.FindAllOverlapping(source) {
		seen[m.PatternID] = true
	}
	return seen
}

// Dissect tries each mapping in order and returns the index of the first one
// that matched, or -1. Only the matching mapping writes to rec.
func (s *Set) Dissect(source []byte, rec Record) (int, Result) {
	var seen []bool
	if s.auto != nil && len(source) > 0 {
		seen = s.present(source)
	}

	for i, d := range s.dissectors {
		if seen != nil && !s.hasAll(i, seen) {
			continue
		}
		if res := d.Dissect(source, rec); res.Matched() {
			return i, res
		}
	}
	return -1, Result{bailed: true}
}

// DissectString is like Dissect but takes a string.
func (s *Set) DissectString(source string, rec Record) (int, Result) {
	return s.Dissect([]byte(source), rec)
}

func (s *Set) hasAll(i int, seen []bool) bool {
	for _, id := range s.required[i] {
		if !seen[id] {
			return false
		}
	}
	return true
}

// Len returns the number of mappings.
func (s *Set) Len() int {
	return len(s.dissectors)
}

// Dissector returns the i-th mapping.
func (s *Set) Dissector(i int) *Dissector {
	return s.dissectors[i]
}

// Prefiltered reports whether an Aho-Corasick prefilter is in use.
func (s *Set) Prefiltered() bool {
	return s.auto != nil
}
