package vmath

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid world transform: rotation then translation
type Transform struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// IdentityTransform places an object at the origin with no rotation
func IdentityTransform() Transform {
	return Transform{Orientation: mgl64.QuatIdent()}
}

// Point maps a local point to world space
func (t Transform) Point(local mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Orientation.Rotate(local))
}

// Direction maps a local direction to world space
func (t Transform) Direction(local mgl64.Vec3) mgl64.Vec3 {
	return t.Orientation.Rotate(local)
}

func (t Transform) Forward() mgl64.Vec3 { return t.Orientation.Rotate(LocalForward) }
func (t Transform) Up() mgl64.Vec3      { return t.Orientation.Rotate(LocalUp) }
func (t Transform) Right() mgl64.Vec3   { return t.Orientation.Rotate(LocalRight) }

// Finite reports whether position and orientation hold only finite values
func (t Transform) Finite() bool {
	return V3Finite(t.Position) && QuatFinite(t.Orientation)
}
