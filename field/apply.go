package field

// Record is the host record that receives extracted fields.
type Record interface {
	Contains(key string) bool
	Get(key string) string
	Set(key, value string)
}

// Values gives a field access to the text extracted by one dissection.
type Values interface {
	// Value returns the text extracted for the field with the given id, or
	// "" for MissingID.
	Value(id int) string

	// FindByName returns the text of the first field named name other than
	// excludeID, or "" when there is none.
	FindByName(name string, excludeID int) string
}

// Apply writes the field's value into rec.
//
// Skip and Missing fields write nothing. An Append field on a key that does
// not exist yet behaves like a Normal field. An Indirect field writes only
// when its key resolves to a non-empty string.
func (f Field) Apply(rec Record, values Values) {
	switch f.kind {
	case Normal:
		rec.Set(f.name, values.Value(f.id))
	case Append:
		v := values.Value(f.id)
		if rec.Contains(f.name) {
			v = rec.Get(f.name) + f.JoinString() + v
		}
		rec.Set(f.name, v)
	case Indirect:
		var key string
		if rec.Contains(f.name) {
			key = rec.Get(f.name)
		} else {
			key = values.FindByName(f.name, f.id)
		}
		if key != "" {
			rec.Set(key, values.Value(f.id))
		}
	}
}
