package dissect

import (
	"github.com/coregx/dissect/internal/conv"
	"github.com/coregx/dissect/mapping"
)

// scan locates every field of m in source in one forward pass and returns
// a value reference per field id, or nil when source does not match.
//
// For each field:
//  1. The first field of a pattern that starts with a literal requires that
//     literal at offset 0.
//  2. A greedy previous delimiter is consumed for as long as it repeats.
//  3. The next delimiter is searched from the current offset; when it is
//     absent the scan bails. The last field takes the rest of the source.
func scan(m *mapping.Mapping, source []byte) []valueRef {
	fields := m.Fields()
	n := len(source)
	if len(fields) == 0 || n == 0 || !conv.FitsUint32(n) {
		return nil
	}

	refs := make([]valueRef, len(fields))
	last := len(fields) - 1
	left := 0
	for i, f := range fields {
		prev := f.Previous()
		if i == 0 && prev != nil {
			if !prev.HasPrefixAt(source, 0) {
				return nil
			}
			left = m.InitialOffset()
		}
		if prev != nil && prev.Greedy() {
			left = prev.SkipRepeats(source, left)
		}

		if i == last {
			refs[i] = newValueRef(left, n-left)
			break
		}

		next := f.Next()
		pos := next.IndexOf(source, left)
		if pos < 0 {
			return nil
		}
		refs[i] = newValueRef(left, pos-left)
		left = pos + next.Size()
	}
	return refs
}
