package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Chassis-local axes, Y up, right-handed
var (
	LocalForward = mgl64.Vec3{0, 0, 1}
	LocalUp      = mgl64.Vec3{0, 1, 0}
	LocalRight   = mgl64.Vec3{-1, 0, 0}
	LocalDown    = mgl64.Vec3{0, -1, 0}
	WorldDown    = mgl64.Vec3{0, -1, 0}
)

// V3Finite reports whether all components are finite
func V3Finite(v mgl64.Vec3) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}

// V3SafeNormalize returns the unit vector of v, or zero for a degenerate input
// mgl64 Normalize divides by length unconditionally
func V3SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon || !IsFinite(l) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// V3Along returns the signed component of v along unit axis
func V3Along(v, axis mgl64.Vec3) float64 {
	return v.Dot(axis)
}

// V3Reject removes the component of v along unit axis
func V3Reject(v, axis mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(axis.Mul(v.Dot(axis)))
}

// V3ClampMagnitude limits vector magnitude
func V3ClampMagnitude(v mgl64.Vec3, maxMag float64) mgl64.Vec3 {
	magSq := v.LenSqr()
	if magSq <= maxMag*maxMag {
		return v
	}
	return v.Mul(maxMag / math.Sqrt(magSq))
}

// SignedAngle returns the angle from a to b around normal, in (-π, π]
// Inputs need not be normalized; degenerate vectors yield 0
func SignedAngle(a, b, normal mgl64.Vec3) float64 {
	a = V3SafeNormalize(a)
	b = V3SafeNormalize(b)
	if a.LenSqr() == 0 || b.LenSqr() == 0 {
		return 0
	}
	return math.Atan2(a.Cross(b).Dot(normal), a.Dot(b))
}

// QuatFinite reports whether all quaternion components are finite
func QuatFinite(q mgl64.Quat) bool {
	return IsFinite(q.W) && V3Finite(q.V)
}
