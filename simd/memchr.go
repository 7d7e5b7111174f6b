// Package simd provides the byte search primitives used to locate delimiters
// in a line of text.
//
// Three searches are offered, one per delimiter shape:
//   - Memchr: a single byte
//   - MemchrPair: two bytes at a fixed distance (two-byte delimiters)
//   - Memmem: an arbitrary substring, driven by a rare-byte heuristic
//
// The pure Go implementations use SWAR (SIMD Within A Register), testing
// eight bytes per iteration with uint64 arithmetic. On x86-64 CPUs with AVX2
// the single-byte search is handed to bytes.IndexByte for longer inputs,
// because the Go runtime already ships a vectorised assembly version of it.
package simd

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"
)

// hasAVX2 is set once at package initialization.
var hasAVX2 = cpu.X86.HasAVX2

// vectorThreshold is the haystack length at which the runtime's vectorised
// IndexByte beats the SWAR loop on AVX2 hardware.
const vectorThreshold = 64

const (
	lo8 = uint64(0x0101010101010101)
	hi8 = uint64(0x8080808080808080)
)

// Memchr returns the index of the first instance of needle in haystack,
// or -1 if needle is not present in haystack.
//
// The result is always identical to bytes.IndexByte.
//
// Example:
//
//	pos := simd.Memchr([]byte("hello world"), 'o')
//	// pos == 4
func Memchr(haystack []byte, needle byte) int {
	if len(haystack) == 0 {
		return -1
	}
	if hasAVX2 && len(haystack) >= vectorThreshold {
		return bytes.IndexByte(haystack, needle)
	}
	return memchrGeneric(haystack, needle)
}

// memchrGeneric searches eight bytes at a time.
//
// The needle is broadcast into every byte of a uint64. XOR with a chunk of
// the haystack turns matching bytes into 0x00, and the classic zero-byte test
// (v - 0x01..01) & ^v & 0x80..80 marks them; the lowest marked byte is the
// first match.
func memchrGeneric(haystack []byte, needle byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == needle {
				return i
			}
		}
		return -1
	}

	mask := uint64(needle) * lo8
	i := 0
	for ; i+8 <= n; i += 8 {
		x := binary.LittleEndian.Uint64(haystack[i:]) ^ mask
		if z := (x - lo8) & ^x & hi8; z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < n; i++ {
		if haystack[i] == needle {
			return i
		}
	}
	return -1
}

// MemchrPair returns the first position i such that haystack[i] == byte1 and
// haystack[i+offset] == byte2, or -1 if there is no such position.
//
// With offset 1 this is an exact search for the two-byte sequence
// [byte1, byte2]. A negative offset never matches.
//
// Example:
//
//	pos := simd.MemchrPair([]byte("a, b, c"), ',', ' ', 1)
//	// pos == 1
func MemchrPair(haystack []byte, byte1, byte2 byte, offset int) int {
	n := len(haystack)
	if n == 0 || offset < 0 || n <= offset {
		return -1
	}

	if n < 8+offset {
		for i := 0; i+offset < n; i++ {
			if haystack[i] == byte1 && haystack[i+offset] == byte2 {
				return i
			}
		}
		return -1
	}

	mask1 := uint64(byte1) * lo8
	mask2 := uint64(byte2) * lo8

	i := 0
	for ; i+8+offset <= n; i += 8 {
		// Bit k of z1 marks haystack[i+k] == byte1, bit k of z2 marks
		// haystack[i+offset+k] == byte2. Borrow propagation can mark bytes
		// above a real zero, so every candidate is verified.
		x1 := binary.LittleEndian.Uint64(haystack[i:]) ^ mask1
		x2 := binary.LittleEndian.Uint64(haystack[i+offset:]) ^ mask2
		z1 := (x1 - lo8) & ^x1 & hi8
		z2 := (x2 - lo8) & ^x2 & hi8
		for z := z1 & z2; z != 0; z &= z - 1 {
			k := i + bits.TrailingZeros64(z)/8
			if haystack[k] == byte1 && haystack[k+offset] == byte2 {
				return k
			}
		}
	}
	for ; i+offset < n; i++ {
		if haystack[i] == byte1 && haystack[i+offset] == byte2 {
			return i
		}
	}
	return -1
}
