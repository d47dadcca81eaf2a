// Package vecmath holds the small numeric helpers shared by the ball
// simulator, the trajectory predictor and the rule engine.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// BaselineHz is the tick rate the per-tick decay constants are calibrated against.
const BaselineHz = 60.0

// DecayFactor converts a per-tick decay constant calibrated at 60Hz into the
// multiplier for a tick of length dt, so that the decay per simulated second
// does not depend on the tick rate.
func DecayFactor(base, dt float64) float64 {
	return math.Pow(base, dt*BaselineHz)
}

// SafeNormalize returns v scaled to unit length. ok is false and the zero
// vector is returned when v is shorter than Epsilon or not finite.
func SafeNormalize(v mgl64.Vec3) (n mgl64.Vec3, ok bool) {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// Reflect mirrors v about the plane with unit normal n.
func Reflect(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Horizontal drops the vertical (Y) component of v.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}

// WithY returns v with its vertical component replaced.
func WithY(v mgl64.Vec3, y float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], y, v[2]}
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Sign returns -1 for negative x and 1 otherwise.
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Lerp interpolates between a and b.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
