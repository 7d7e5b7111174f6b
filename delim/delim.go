// Package delim implements the literal delimiters that separate fields in a
// dissect mapping, together with the byte search used to locate them.
//
// A Delimiter is immutable once built. Its search strategy depends only on
// its byte length:
//   - 0 bytes → never found (the "no delimiter" sentinel)
//   - 1 byte  → simd.Memchr
//   - 2 bytes → simd.MemchrPair
//   - 3+ bytes → simd.Memmem, or Boyer-Moore-Horspool for long needles
//
// Example:
//
//	d := delim.New(" - ", false)
//	pos := d.IndexOf([]byte("host - message"), 0)
//	// pos == 4
package delim

import "strconv"

// Delimiter is a literal byte sequence with a precomputed search strategy.
//
// A greedy delimiter may repeat any number of times in the source; the
// dissection engine consumes all repetitions before the next field starts.
//
// A Delimiter is safe for concurrent use.
type Delimiter struct {
	bytes    []byte
	text     string
	strategy Strategy
	greedy   bool
	table    *horspool
}

// New builds a delimiter from its literal text.
//
// greedy is ignored for the empty delimiter: a zero-length delimiter cannot
// be consumed repeatedly without looping forever.
func New(literal string, greedy bool) *Delimiter {
	b := []byte(literal)
	d := &Delimiter{
		bytes:    b,
		text:     literal,
		strategy: strategyFor(len(b)),
		greedy:   greedy && len(b) > 0,
	}
	if len(b) > horspoolThreshold {
		d.table = newHorspool(b)
	}
	return d
}

// IndexOf returns the position of the first occurrence of the delimiter in
// haystack at or after offset, or -1 if it does not occur.
func (d *Delimiter) IndexOf(haystack []byte, offset int) int {
	return search(d.strategy, d.table, d.bytes, haystack, offset)
}

// HasPrefixAt reports whether the delimiter occurs in haystack exactly at
// offset. The empty delimiter never does.
func (d *Delimiter) HasPrefixAt(haystack []byte, offset int) bool {
	n := len(d.bytes)
	if n == 0 || offset < 0 || offset+n > len(haystack) {
		return false
	}
	for i := 0; i < n; i++ {
		if haystack[offset+i] != d.bytes[i] {
			return false
		}
	}
	return true
}

// SkipRepeats returns the first offset at or after offset where the
// delimiter does not start, consuming back-to-back repetitions. Each
// iteration advances by the delimiter size, so the loop always terminates.
func (d *Delimiter) SkipRepeats(haystack []byte, offset int) int {
	for d.HasPrefixAt(haystack, offset) {
		offset += len(d.bytes)
	}
	return offset
}

// Size returns the delimiter length in bytes.
func (d *Delimiter) Size() int {
	return len(d.bytes)
}

// Bytes returns the delimiter bytes. The slice is shared and must not be
// modified.
func (d *Delimiter) Bytes() []byte {
	return d.bytes
}

// Greedy reports whether repeated occurrences are consumed as one.
func (d *Delimiter) Greedy() bool {
	return d.greedy
}

// Strategy returns the search strategy selected for this delimiter.
func (d *Delimiter) Strategy() Strategy {
	return d.strategy
}

// String returns the literal text of the delimiter.
func (d *Delimiter) String() string {
	return d.text
}

// GoString returns a debug representation, e.g. Delimiter{" ", One, greedy}.
func (d *Delimiter) GoString() string {
	s := "Delimiter{" + strconv.Quote(d.text) + ", " + d.strategy.String()
	if d.greedy {
		s += ", greedy"
	}
	return s + "}"
}
