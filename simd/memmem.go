package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack,
// or -1 if needle is not present in haystack.
//
// An empty needle matches at 0, like bytes.Index. Callers that need "no
// delimiter never matches" semantics must check the needle length first.
//
// Algorithm:
//  1. Pick the rarest byte of the needle using ByteFrequencies
//  2. Use Memchr to find candidates for that byte
//  3. Verify the whole needle around each candidate
//
// Example:
//
//	pos := simd.Memmem([]byte("aaaaaabaaaa"), []byte("aab"))
//	// pos == 4
func Memmem(haystack, needle []byte) int {
	m := len(needle)
	n := len(haystack)

	if m == 0 {
		return 0
	}
	if n == 0 || m > n {
		return -1
	}
	if m == 1 {
		return Memchr(haystack, needle[0])
	}

	rare, rareIdx := selectRareByte(needle)

	// Candidates for the rare byte can only start a match between
	// rareIdx and n-m+rareIdx.
	start := rareIdx
	last := n - m + rareIdx
	for start <= last {
		pos := Memchr(haystack[start:last+1], rare)
		if pos == -1 {
			return -1
		}
		candidate := start + pos - rareIdx
		if bytes.Equal(haystack[candidate:candidate+m], needle) {
			return candidate
		}
		start += pos + 1
	}
	return -1
}
