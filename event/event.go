// Package event provides the record that dissected fields are written to.
//
// An Event holds typed field values and an ordered set of tags. It
// implements dissect.Record, so a Dissector writes string fields straight
// into it; the convert package later replaces some of them with numbers.
package event

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// TagsField is the key under which tags are serialized.
const TagsField = "tags"

// Event is a set of named values plus tags. The zero value is an empty
// event ready to use. It is not safe for concurrent use.
type Event struct {
	fields map[string]any
	tags   []string
}

// New returns an empty event.
func New() *Event {
	return &Event{fields: make(map[string]any)}
}

// FromMap returns an event holding a copy of fields.
func FromMap(fields map[string]any) *Event {
	ev := &Event{fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		ev.fields[k] = v
	}
	return ev
}

// Contains reports whether key is set, even to nil.
func (e *Event) Contains(key string) bool {
	_, ok := e.fields[key]
	return ok
}

// Get returns the value of key rendered as a string, or "".
func (e *Event) Get(key string) string {
	return format(e.fields[key])
}

// Set stores a string value.
func (e *Event) Set(key, value string) {
	e.SetValue(key, value)
}

// Value returns the raw value of key.
func (e *Event) Value(key string) (any, bool) {
	v, ok := e.fields[key]
	return v, ok
}

// SetValue stores a value of any type.
func (e *Event) SetValue(key string, value any) {
	if e.fields == nil {
		e.fields = make(map[string]any)
	}
	e.fields[key] = value
}

// Delete removes key.
func (e *Event) Delete(key string) {
	delete(e.fields, key)
}

// Tag adds tags that are not present yet, keeping insertion order.
func (e *Event) Tag(tags ...string) {
	for _, t := range tags {
		if !slices.Contains(e.tags, t) {
			e.tags = append(e.tags, t)
		}
	}
}

// Tags returns a copy of the tags.
func (e *Event) Tags() []string {
	return slices.Clone(e.tags)
}

// HasTag reports whether tag is present.
func (e *Event) HasTag(tag string) bool {
	return slices.Contains(e.tags, tag)
}

// Fields returns a copy of the field values.
func (e *Event) Fields() map[string]any {
	out := make(map[string]any, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// Len returns the number of fields.
func (e *Event) Len() int {
	return len(e.fields)
}

// MarshalJSON encodes the fields as one flat object, with the tags under
// TagsField when there are any.
func (e *Event) MarshalJSON() ([]byte, error) {
	out := e.Fields()
	if len(e.tags) > 0 {
		out[TagsField] = e.tags
	}
	return json.Marshal(out)
}

func format(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
