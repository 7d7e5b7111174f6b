// Package dissect extracts named fields from a line of text using a
// delimiter-based mapping instead of a regular expression.
//
// A mapping such as
//
//	%{ts} %{+ts} %{host} %{program}[%{pid}]: %{msg}
//
// is compiled once into a fixed sequence of byte searches. Dissecting a line
// is a single left-to-right scan with no backtracking:
//   - Text between %{...} tokens is a delimiter located with SIMD-style
//     byte search (memchr, memchr2, memmem)
//   - Each field takes the bytes between its delimiters
//   - Fields are written back only when the whole line matched
//
// Field syntax:
//
//	%{name}     write name
//	%{?name}    skip (match, do not write)
//	%{+name}    append to name, joined by the previous delimiter
//	%{+name/2}  append with explicit order
//	%{&name}    use the value of name as the key
//	%{name->}   the following delimiter may repeat (padding)
//
// Basic usage:
//
//	d, err := dissect.Compile("%{ts} %{host} %{msg}")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fields, ok := d.DissectMap("2016-05-25T14:47:23Z web-1 started")
//	if ok {
//	    fmt.Println(fields["host"]) // "web-1"
//	}
//
// A Dissector is immutable. Every call allocates its own scratch space, so a
// single Dissector may be used from many goroutines at once.
package dissect

import (
	"github.com/coregx/dissect/field"
	"github.com/coregx/dissect/mapping"
)

// Record is the host record that receives extracted fields.
type Record = field.Record

// InvalidMappingError reports a pattern that cannot be compiled.
type InvalidMappingError = mapping.InvalidMappingError

// Compilation errors, matched with errors.Is.
var (
	ErrEmptyMapping      = mapping.ErrEmptyMapping
	ErrMixedPrefix       = field.ErrMixedPrefix
	ErrPrefixWithoutName = field.ErrPrefixWithoutName
	ErrInvalidOrder      = field.ErrInvalidOrder
)

// Dissector is a compiled dissect mapping.
//
// Example:
//
//	d := dissect.MustCompile("%{a} %{b}")
//	rec := dissect.Map{}
//	if d.DissectString("foo bar", rec).Matched() {
//	    println(rec["b"]) // bar
//	}
type Dissector struct {
	mapping *mapping.Mapping
}

// Compile compiles a dissect mapping.
//
// Returns an *InvalidMappingError if the pattern is empty or a field mixes
// the '+' and '&' prefixes or has a prefix without a name.
//
// Example:
//
//	d, err := dissect.Compile("%{a->} %{b}")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Dissector, error) {
	m, err := mapping.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Dissector{mapping: m}, nil
}

// MustCompile compiles a dissect mapping and panics if it fails.
//
// Example:
//
//	var syslog = dissect.MustCompile("%{ts} %{host} %{program}: %{msg}")
func MustCompile(pattern string) *Dissector {
	d, err := Compile(pattern)
	if err != nil {
		panic("dissect: Compile(`" + pattern + "`): " + err.Error())
	}
	return d
}

// Dissect scans source and, when the whole mapping matches, writes the
// extracted fields into rec.
//
// On a non-match nothing is written to rec.
func (d *Dissector) Dissect(source []byte, rec Record) Result {
	refs := scan(d.mapping, source)
	if refs == nil {
		return Result{bailed: true}
	}

	values := &resolver{source: source, fields: d.mapping.Fields(), refs: refs}
	for _, f := range d.mapping.Saveable() {
		f.Apply(rec, values)
	}
	return Result{}
}

// DissectString is like Dissect but takes a string.
func (d *Dissector) DissectString(source string, rec Record) Result {
	return d.Dissect([]byte(source), rec)
}

// DissectMap dissects source into a new Map. It returns nil and false when
// source does not match.
func (d *Dissector) DissectMap(source string) (Map, bool) {
	rec := make(Map, len(d.mapping.Saveable()))
	if d.DissectString(source, rec).NotMatched() {
		return nil, false
	}
	return rec, true
}

// String returns the source text used to compile the dissector.
func (d *Dissector) String() string {
	return d.mapping.Pattern()
}

// FieldNames returns the distinct names of the fields that are written
// back, in pattern order. Indirect fields are listed by the name they look
// up, not by the key they produce.
func (d *Dissector) FieldNames() []string {
	return d.mapping.Names()
}

// NumFields returns the number of fields, skip fields included.
func (d *Dissector) NumFields() int {
	return d.mapping.Len()
}

// Mapping returns the compiled mapping.
func (d *Dissector) Mapping() *mapping.Mapping {
	return d.mapping
}
