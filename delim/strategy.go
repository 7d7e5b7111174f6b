package delim

import (
	"fmt"

	"github.com/coregx/dissect/simd"
)

// Strategy identifies the byte search used to locate a delimiter.
//
// The strategy is a pure function of the delimiter's byte length; every
// strategy returns the same (left-most) position, only the cost differs.
type Strategy uint8

const (
	// Zero is used for the empty delimiter. It never matches.
	Zero Strategy = iota

	// One searches for a single byte with simd.Memchr.
	One

	// Two searches for a byte pair with simd.MemchrPair.
	Two

	// Many searches for three or more bytes: simd.Memmem for short
	// needles, Boyer-Moore-Horspool for long ones.
	Many
)

// String returns a human-readable strategy name
func (s Strategy) String() string {
	switch s {
	case Zero:
		return "Zero"
	case One:
		return "One"
	case Two:
		return "Two"
	case Many:
		return "Many"
	default:
		return fmt.Sprintf("UnknownStrategy(%d)", s)
	}
}

// strategyFor selects the search strategy for a needle of length n.
func strategyFor(n int) Strategy {
	switch n {
	case 0:
		return Zero
	case 1:
		return One
	case 2:
		return Two
	default:
		return Many
	}
}

// horspoolThreshold is the needle length above which the shift table pays
// for itself compared to the rare-byte scan.
const horspoolThreshold = 32

// horspool holds the bad-character shift table for one needle.
type horspool struct {
	shift [256]int
}

func newHorspool(needle []byte) *horspool {
	h := &horspool{}
	m := len(needle)
	for i := range h.shift {
		h.shift[i] = m
	}
	for i := 0; i < m-1; i++ {
		h.shift[needle[i]] = m - 1 - i
	}
	return h
}

// index returns the left-most position of needle in haystack, or -1.
func (h *horspool) index(haystack, needle []byte) int {
	m := len(needle)
	n := len(haystack)
	last := m - 1
	for i := 0; i+m <= n; i += h.shift[haystack[i+last]] {
		j := last
		for j >= 0 && haystack[i+j] == needle[j] {
			j--
		}
		if j < 0 {
			return i
		}
	}
	return -1
}

// IndexOf returns the position of the first occurrence of needle in haystack
// at or after offset, or -1.
//
// An empty needle never matches, which distinguishes "no delimiter" from a
// delimiter that happens to be found. A negative offset is treated as 0 and
// an offset past the end of haystack returns -1.
//
// Example:
//
//	pos := delim.IndexOf([]byte("->"), []byte("1.1.1.1/80->2.2.2.2/90"), 0)
//	// pos == 10
func IndexOf(needle, haystack []byte, offset int) int {
	return search(strategyFor(len(needle)), nil, needle, haystack, offset)
}

// search dispatches on the strategy. h may be nil, in which case long
// needles fall back to simd.Memmem.
func search(s Strategy, h *horspool, needle, haystack []byte, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(haystack) {
		return -1
	}
	window := haystack[offset:]

	var pos int
	switch s {
	case Zero:
		return -1
	case One:
		pos = simd.Memchr(window, needle[0])
	case Two:
		pos = simd.MemchrPair(window, needle[0], needle[1], 1)
	default:
		if h != nil {
			pos = h.index(window, needle)
		} else {
			pos = simd.Memmem(window, needle)
		}
	}
	if pos < 0 {
		return -1
	}
	return offset + pos
}
