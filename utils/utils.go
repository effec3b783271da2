// Package utils implements small generic helpers shared across the library.
package utils

import (
	"golang.org/x/exp/constraints"
)

// Max returns the maximum of a and b.
func Max[V constraints.Ordered](a, b V) (r V) {
	if a >= b {
		return a
	}
	return b
}

// IsPowerOfTwo returns true if x is a power of two greater than zero.
func IsPowerOfTwo[V constraints.Integer](x V) bool {
	return x > 0 && x&(x-1) == 0
}

// EqualSlice returns true if a and b have the same length and elements.
func EqualSlice[V comparable](a, b []V) bool {
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
