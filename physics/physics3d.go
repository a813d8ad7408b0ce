package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// resolveGround pushes a box body out of the ground and removes approaching velocity
// Each penetrating corner receives a normal impulse with restitution and a Coulomb-clamped
// friction impulse. Returns true if any corner touched
func resolveGround(b *Body, g Ground) bool {
	if b.invMass == 0 {
		return false
	}

	corners := b.corners()
	maxDepth := 0.0
	var pushNormal mgl64.Vec3
	touched := false

	for _, c := range corners {
		depth, n, ok := g.Penetration(c)
		if !ok {
			continue
		}
		touched = true
		if depth > maxDepth {
			maxDepth = depth
			pushNormal = n
		}

		r := c.Sub(b.position)
		vn := b.PointVelocity(c).Dot(n)
		if vn >= 0 {
			continue
		}

		// Effective mass along n at r: 1/m + n·((I⁻¹(r×n))×r)
		k := b.invMass + n.Dot(b.InvInertiaWorld(r.Cross(n)).Cross(r))
		if k <= 0 {
			continue
		}
		jn := -(1 + b.restitution) * vn / k
		b.ApplyImpulse(n.Mul(jn), c)

		// Tangential slip after the normal impulse
		v := b.PointVelocity(c)
		vt := v.Sub(n.Mul(v.Dot(n)))
		vtLen := vt.Len()
		if vtLen < 1e-9 {
			continue
		}
		t := vt.Mul(1 / vtLen)
		kt := b.invMass + t.Dot(b.InvInertiaWorld(r.Cross(t)).Cross(r))
		if kt <= 0 {
			continue
		}
		jt := math.Min(vtLen/kt, b.friction*jn)
		b.ApplyImpulse(t.Mul(-jt), c)
	}

	if maxDepth > 0 {
		b.position = b.position.Add(pushNormal.Mul(maxDepth))
	}
	return touched
}
