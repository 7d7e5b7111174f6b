package dissect

import (
	"github.com/coregx/dissect/field"
	"github.com/coregx/dissect/internal/conv"
)

// valueRef locates one field's bytes in the source. length 0 means the field
// is empty.
type valueRef struct {
	pos    uint32
	length uint32
}

func newValueRef(pos, length int) valueRef {
	return valueRef{pos: conv.IntToUint32(pos), length: conv.IntToUint32(length)}
}

// resolver materializes field values from one successful scan.
type resolver struct {
	source []byte
	fields []field.Field
	refs   []valueRef // indexed by field id
}

// Value returns the text of the field with the given id.
func (r *resolver) Value(id int) string {
	if id < 0 || id >= len(r.refs) {
		return ""
	}
	ref := r.refs[id]
	if ref.length == 0 {
		return ""
	}
	return string(r.source[ref.pos : ref.pos+ref.length])
}

// Find returns the first field named name other than excludeID, or the
// Missing sentinel.
func (r *resolver) Find(name string, excludeID int) field.Field {
	for _, f := range r.fields {
		if f.ID() != excludeID && f.Name() == name {
			return f
		}
	}
	return field.MissingField()
}

// FindByName returns the text of the field Find selects.
func (r *resolver) FindByName(name string, excludeID int) string {
	return r.Value(r.Find(name, excludeID).ID())
}
