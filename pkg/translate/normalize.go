package translate

import "cmp"

// Clamp returns v limited to the closed range [lo, hi]
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// Between returns a normalizer clamping values into [lo, hi]
func Between[T cmp.Ordered](lo, hi T) func(T) T {
	return func(v T) T {
		return Clamp(v, lo, hi)
	}
}

// AtLeast returns a normalizer raising values below lo to lo
func AtLeast[T cmp.Ordered](lo T) func(T) T {
	return func(v T) T {
		return max(v, lo)
	}
}
