// Package mathx holds small numeric helpers shared by the engine.
package mathx

import "golang.org/x/exp/constraints"

// Clamp bounds v into [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
