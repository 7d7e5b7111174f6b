// Package conv provides checked integer narrowing for value references.
//
// Dissection stores field positions as uint32 pairs. Sources larger than
// math.MaxUint32 bytes are rejected before scanning, so a failing conversion
// here is a programming error and panics.
package conv

import "math"

// FitsUint32 reports whether n can be stored in a uint32.
func FitsUint32(n int) bool {
	// uint comparison keeps this correct where int is 32 bits wide
	return n >= 0 && uint(n) <= math.MaxUint32
}

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
func IntToUint32(n int) uint32 {
	if !FitsUint32(n) {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}
