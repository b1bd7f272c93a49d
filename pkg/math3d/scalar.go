package math3d

import "math"

// Epsilon is the absolute tolerance used for near-zero comparisons.
const Epsilon = 1e-9

// RelEpsilon is the relative tolerance used where a comparison must scale
// with the magnitude of its operands.
const RelEpsilon = 1e-9

// AlmostZero reports whether |f| <= Epsilon.
func AlmostZero(f float64) bool {
	return math.Abs(f) <= Epsilon
}

// AlmostEqual reports whether a and b differ by at most eps.
func AlmostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// Lerp interpolates between a and b. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpClamped interpolates between a and b with t clamped to [0, 1].
func LerpClamped(a, b, t float64) float64 {
	return Lerp(a, b, Clamp(t, 0, 1))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
