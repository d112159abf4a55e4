// SPDX-License-Identifier: MIT

// Package bitint holds the power-of-two helpers used to size and validate
// FFT frames. All functions are allocation free.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size, and 1 for
// size <= 0. Subtracting one first keeps exact powers unchanged.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// PrevPowerOfTwo returns the largest power of two <= size, and 0 for
// size <= 0.
func PrevPowerOfTwo(size int) int {
	if size <= 0 {
		return 0
	}
	return 1 << (bits.Len(uint(size)) - 1)
}

// NearestPowerOfTwo returns whichever of PrevPowerOfTwo and NextPowerOfTwo is
// closer to size, preferring the larger on a tie.
func NearestPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	lo, hi := PrevPowerOfTwo(size), NextPowerOfTwo(size)
	if size-lo < hi-size {
		return lo
	}
	return hi
}

// IsPowerOfTwo reports whether n is a positive power of two. A power of two
// has one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
