// Package mapping compiles dissect patterns such as
//
//	%{ts} %{+ts} %{host} %{program}[%{pid}]: %{msg}
//
// into an immutable sequence of fields linked by delimiters.
//
// Compilation runs in two passes. The first tokenizes the pattern into
// (literal, field spec) pairs. The second turns every literal into a
// delimiter, decides which delimiters are greedy and wires each field to the
// delimiters before and after it. The resulting Mapping is never modified
// and may be shared between goroutines.
package mapping

import (
	"sort"
	"strings"

	"github.com/coregx/dissect/delim"
	"github.com/coregx/dissect/field"
)

const (
	openToken  = "%{"
	closeToken = '}'
)

// Mapping is a compiled dissect pattern.
type Mapping struct {
	pattern       string
	fields        []field.Field
	saveable      []field.Field
	delimiters    []*delim.Delimiter
	initialOffset int
}

// part is the output of the first pass: a field and the literal before it.
type part struct {
	literal string
	spec    field.Spec
}

// rawToken is a %{...} token with the literal text preceding it.
type rawToken struct {
	literal string
	spec    string
}

// Compile parses a dissect pattern.
//
// Text outside %{...} tokens becomes delimiters. Trailing text after the
// last token becomes the previous delimiter of an extra anonymous skip
// field, and a pattern with no tokens at all compiles to a single skip
// field. An unterminated "%{" is literal text.
//
// Example:
//
//	m, err := mapping.Compile("%{a} %{b->} %{c}")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(m.Len()) // 3
func Compile(pattern string) (*Mapping, error) {
	if pattern == "" {
		return nil, &InvalidMappingError{Err: ErrEmptyMapping}
	}

	tokens, trailing := tokenize(pattern)

	parts := make([]part, 0, len(tokens)+1)
	for _, tok := range tokens {
		spec, err := field.ParseSpec(tok.spec)
		if err != nil {
			return nil, &InvalidMappingError{Pattern: pattern, Field: tok.spec, Err: err}
		}
		parts = append(parts, part{literal: tok.literal, spec: spec})
	}
	if trailing != "" || len(parts) == 0 {
		parts = append(parts, part{literal: trailing, spec: field.Spec{Kind: field.Skip}})
	}

	return build(pattern, parts), nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Mapping {
	m, err := Compile(pattern)
	if err != nil {
		panic("mapping: Compile(`" + pattern + "`): " + err.Error())
	}
	return m
}

// tokenize splits pattern into %{...} tokens, each with the shortest run of
// literal text before it, and returns the text after the last token.
func tokenize(pattern string) (tokens []rawToken, trailing string) {
	rest := pattern
	for {
		open := strings.Index(rest, openToken)
		if open < 0 {
			break
		}
		body := rest[open+len(openToken):]
		end := strings.IndexByte(body, closeToken)
		if end < 0 {
			break
		}
		tokens = append(tokens, rawToken{literal: rest[:open], spec: body[:end]})
		rest = body[end+1:]
	}
	return tokens, rest
}

// build is the second pass.
func build(pattern string, parts []part) *Mapping {
	n := len(parts)
	delims := make([]*delim.Delimiter, n)
	for i, p := range parts {
		if i == 0 && p.literal == "" {
			continue
		}
		// A leading literal may be padded; a literal after a "->" field
		// may repeat.
		greedy := i == 0 || parts[i-1].spec.GreedyNext
		delims[i] = delim.New(p.literal, greedy)
	}

	m := &Mapping{
		pattern:       pattern,
		fields:        make([]field.Field, n),
		initialOffset: len(parts[0].literal),
	}
	seen := make(map[string]bool, n)
	for i, p := range parts {
		var next *delim.Delimiter
		if i+1 < n {
			next = delims[i+1]
		}
		f := field.New(i, p.spec, delims[i], next)
		m.fields[i] = f
		if f.Saveable() {
			m.saveable = append(m.saveable, f)
		}
		if d := delims[i]; d != nil && d.Size() > 0 && !seen[d.String()] {
			seen[d.String()] = true
			m.delimiters = append(m.delimiters, d)
		}
	}
	sort.SliceStable(m.saveable, func(a, b int) bool {
		return m.saveable[a].Ordinal() < m.saveable[b].Ordinal()
	})
	return m
}

// Fields returns all fields in pattern order. The slice is shared and must
// not be modified.
func (m *Mapping) Fields() []field.Field {
	return m.fields
}

// Saveable returns the fields written back to a record, sorted by ordinal.
// The slice is shared and must not be modified.
func (m *Mapping) Saveable() []field.Field {
	return m.saveable
}

// Delimiters returns the distinct non-empty delimiters in pattern order.
func (m *Mapping) Delimiters() []*delim.Delimiter {
	return m.delimiters
}

// InitialOffset returns the length of the literal the pattern starts with.
func (m *Mapping) InitialOffset() int {
	return m.initialOffset
}

// Pattern returns the source text of the mapping.
func (m *Mapping) Pattern() string {
	return m.pattern
}

// Len returns the number of fields, skip fields included.
func (m *Mapping) Len() int {
	return len(m.fields)
}

// Names returns the distinct names of saveable fields in pattern order.
func (m *Mapping) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, f := range m.fields {
		if f.Saveable() && !seen[f.Name()] {
			seen[f.Name()] = true
			names = append(names, f.Name())
		}
	}
	return names
}

// String returns the pattern.
func (m *Mapping) String() string {
	return m.pattern
}
