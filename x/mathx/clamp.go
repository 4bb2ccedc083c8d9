package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Between reports lo <= v && v <= hi (order-insensitive).
func Between[T constraints.Ordered](v, lo, hi T) bool {
	if hi < lo {
		lo, hi = hi, lo
	}
	return v >= lo && v <= hi
}

// StepClamp moves v by steps*size and clamps the result to [lo, hi].
// The product is computed in int64 so large encoder jumps cannot wrap.
func StepClamp[T constraints.Integer](v, steps, size, lo, hi T) T {
	n := int64(v) + int64(steps)*int64(size)
	return T(Clamp(n, int64(lo), int64(hi)))
}
