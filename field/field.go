// Package field describes the extraction slots of a dissect mapping.
//
// A Field is a small tagged union: every field shares an id, a name, an
// ordinal and links to the delimiters around it, and its Kind selects the
// write-back behaviour:
//
//	%{name}   Normal    writes name -> value
//	%{?name}  Skip      consumes text, writes nothing
//	%{+name}  Append    joins value onto an existing name
//	%{&name}  Indirect  uses the value of name as the output key
//
// Fields are compared by id, never by name: two Append fields for the same
// key are distinct slots.
package field

import (
	"fmt"
	"strings"

	"github.com/coregx/dissect/delim"
)

// Kind is the variant of a field.
type Kind uint8

const (
	// Skip fields consume text but are never written to the record.
	Skip Kind = iota

	// Normal fields write their value under their own name.
	Normal

	// Append fields concatenate their value onto an existing key.
	Append

	// Indirect fields take the output key from another value.
	Indirect

	// Missing is the kind of the sentinel returned by failed lookups.
	Missing
)

// String returns a human-readable kind name
func (k Kind) String() string {
	switch k {
	case Skip:
		return "Skip"
	case Normal:
		return "Normal"
	case Append:
		return "Append"
	case Indirect:
		return "Indirect"
	case Missing:
		return "Missing"
	default:
		return fmt.Sprintf("UnknownKind(%d)", k)
	}
}

// Ordinals establish the write-back order of saveable fields. Kinds are
// grouped regardless of where they appear in the pattern; inside the Append
// group the explicit /N order is added to AppendOrdinal.
const (
	SkipOrdinal     = 0
	NormalOrdinal   = 1
	AppendOrdinal   = 100
	IndirectOrdinal = 1000
	MissingOrdinal  = 100000
)

// MissingID is the id of the Missing sentinel.
const MissingID = -1

// Field is one extraction slot of a compiled mapping.
//
// Field values are immutable and may be shared between goroutines.
type Field struct {
	id       int
	name     string
	kind     Kind
	ordinal  int
	previous *delim.Delimiter
	next     *delim.Delimiter
}

var missing = Field{id: MissingID, kind: Missing, ordinal: MissingOrdinal}

// MissingField returns the sentinel used when a lookup by name fails.
func MissingField() Field {
	return missing
}

// New builds a field from a parsed spec. previous is the delimiter before the
// field (nil when the pattern starts with it) and next the delimiter after it
// (nil for the last field).
func New(id int, spec Spec, previous, next *delim.Delimiter) Field {
	return Field{
		id:       id,
		name:     spec.Name,
		kind:     spec.Kind,
		ordinal:  ordinalFor(spec),
		previous: previous,
		next:     next,
	}
}

func ordinalFor(spec Spec) int {
	switch spec.Kind {
	case Normal:
		return NormalOrdinal
	case Append:
		return AppendOrdinal + spec.Order
	case Indirect:
		return IndirectOrdinal
	case Missing:
		return MissingOrdinal
	default:
		return SkipOrdinal
	}
}

// ID returns the dense index of the field inside its mapping.
func (f Field) ID() int { return f.id }

// Name returns the field name without prefix or suffix.
func (f Field) Name() string { return f.name }

// Kind returns the field variant.
func (f Field) Kind() Kind { return f.kind }

// Ordinal returns the write-back sort key.
func (f Field) Ordinal() int { return f.ordinal }

// Previous returns the delimiter before the field, or nil.
func (f Field) Previous() *delim.Delimiter { return f.previous }

// Next returns the delimiter after the field, or nil for the last field.
func (f Field) Next() *delim.Delimiter { return f.next }

// Saveable reports whether the field takes part in write-back.
func (f Field) Saveable() bool {
	return f.kind == Normal || f.kind == Append || f.kind == Indirect
}

// IsMissing reports whether f is the Missing sentinel.
func (f Field) IsMissing() bool {
	return f.kind == Missing
}

// JoinString is the separator an Append field puts between the existing
// value and its own: the text of the previous delimiter, or a single space.
func (f Field) JoinString() string {
	if f.previous == nil || f.previous.Size() == 0 {
		return " "
	}
	return f.previous.String()
}

// String returns a debug representation of the field.
func (f Field) String() string {
	var sb strings.Builder
	sb.WriteString(f.kind.String())
	sb.WriteString("{name=")
	sb.WriteString(f.name)
	fmt.Fprintf(&sb, ", ordinal=%d", f.ordinal)
	sb.WriteString(", previous=")
	writeDelim(&sb, f.previous)
	sb.WriteString(", next=")
	writeDelim(&sb, f.next)
	sb.WriteByte('}')
	return sb.String()
}

func writeDelim(sb *strings.Builder, d *delim.Delimiter) {
	if d == nil {
		sb.WriteString("nil")
		return
	}
	sb.WriteString(d.GoString())
}
