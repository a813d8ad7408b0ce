package vmath

import "github.com/go-gl/mathgl/mgl64"

// RayHit describes the first surface a ray meets
type RayHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3 // unit, facing the ray origin
	Distance float64    // along the unit ray direction
}
