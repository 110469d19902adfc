package utils

import (
	"golang.org/x/exp/constraints"
)

// ClampInteger constrains x to the inclusive range [lower, upper].
// Returns the constrained integer and a boolean indicating whether x was outside of the range.
func ClampInteger[T constraints.Integer](x T, lower T, upper T) (T, bool) {
	if x < lower {
		return lower, true
	}
	if x > upper {
		return upper, true
	}
	return x, false
}

// SaturatingSub subtracts y from x, returning zero instead of wrapping around if y exceeds x.
func SaturatingSub[T constraints.Unsigned](x T, y T) T {
	if y >= x {
		return 0
	}
	return x - y
}
