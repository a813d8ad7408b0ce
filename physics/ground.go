package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/raycar/vmath"
)

// Ground is the static environment bodies and probes interact with
type Ground interface {
	// Raycast returns the first hit along unit dir within maxDist
	Raycast(from, dir mgl64.Vec3, maxDist float64) (vmath.RayHit, bool)

	// Penetration returns how far p lies below the surface and the surface normal there
	Penetration(p mgl64.Vec3) (depth float64, normal mgl64.Vec3, ok bool)
}

// FlatGround is an infinite horizontal plane at Height
type FlatGround struct {
	Height float64
}

var groundNormal = mgl64.Vec3{0, 1, 0}

func (g FlatGround) Raycast(from, dir mgl64.Vec3, maxDist float64) (vmath.RayHit, bool) {
	above := from[1] - g.Height
	// Origin below the plane never reports a hit; the chassis contact pass recovers it
	if above < 0 || dir[1] >= 0 {
		return vmath.RayHit{}, false
	}
	dist := above / -dir[1]
	if dist > maxDist {
		return vmath.RayHit{}, false
	}
	return vmath.RayHit{
		Point:    from.Add(dir.Mul(dist)),
		Normal:   groundNormal,
		Distance: dist,
	}, true
}

func (g FlatGround) Penetration(p mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	depth := g.Height - p[1]
	if depth <= 0 {
		return 0, mgl64.Vec3{}, false
	}
	return depth, groundNormal, true
}

// NoGround is an empty environment; nothing is ever hit
type NoGround struct{}

func (NoGround) Raycast(mgl64.Vec3, mgl64.Vec3, float64) (vmath.RayHit, bool) {
	return vmath.RayHit{}, false
}

func (NoGround) Penetration(mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	return 0, mgl64.Vec3{}, false
}
