// Package utils implements small generic helpers shared across the module.
package utils

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// BitReverse64 returns the bit-reversal of index within a window of bitLen bits.
func BitReverse64(index, bitLen uint64) uint64 {
	return bits.Reverse64(index) >> (64 - bitLen)
}

// Min returns the minimum of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a <= b {
		return a
	}
	return b
}

// Max returns the maximum of a and b.
func Max[T constraints.Ordered](a, b T) T {
	if a >= b {
		return a
	}
	return b
}

// EqualSlice returns true if a and b have the same length and identical contents.
func EqualSlice[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AllDistinct returns true if all elements of s are distinct.
func AllDistinct[T comparable](s []T) bool {
	m := make(map[T]struct{}, len(s))
	for _, si := range s {
		if _, ok := m[si]; ok {
			return false
		}
		m[si] = struct{}{}
	}
	return true
}
