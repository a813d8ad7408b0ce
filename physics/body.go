package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/raycar/vmath"
)

// BodyID identifies a body within one World
type BodyID uint64

// Body is a rigid box with diagonal inertia
// Forces accumulate between steps and are cleared after integration
type Body struct {
	id BodyID

	position        mgl64.Vec3
	orientation     mgl64.Quat
	velocity        mgl64.Vec3
	angularVelocity mgl64.Vec3

	mass            float64
	invMass         float64
	invInertiaLocal mgl64.Vec3
	halfExtents     mgl64.Vec3

	friction    float64
	restitution float64

	force  mgl64.Vec3
	torque mgl64.Vec3
}

// NewBox creates a box body at the origin with identity orientation
func NewBox(mass float64, halfExtents mgl64.Vec3, friction, restitution float64) *Body {
	b := &Body{
		orientation: mgl64.QuatIdent(),
		halfExtents: halfExtents,
		friction:    friction,
		restitution: restitution,
	}
	b.setMass(mass)
	return b
}

func (b *Body) setMass(mass float64) {
	b.mass = mass
	if mass <= 0 {
		b.invMass = 0
		b.invInertiaLocal = mgl64.Vec3{}
		return
	}
	b.invMass = 1 / mass
	x2 := 4 * b.halfExtents[0] * b.halfExtents[0]
	y2 := 4 * b.halfExtents[1] * b.halfExtents[1]
	z2 := 4 * b.halfExtents[2] * b.halfExtents[2]
	inertia := mgl64.Vec3{
		mass / 12 * (y2 + z2),
		mass / 12 * (x2 + z2),
		mass / 12 * (x2 + y2),
	}
	for i := range inertia {
		if inertia[i] > 0 {
			b.invInertiaLocal[i] = 1 / inertia[i]
		}
	}
}

func (b *Body) ID() BodyID                      { return b.id }
func (b *Body) Mass() float64                   { return b.mass }
func (b *Body) HalfExtents() mgl64.Vec3         { return b.halfExtents }
func (b *Body) Position() mgl64.Vec3            { return b.position }
func (b *Body) Orientation() mgl64.Quat         { return b.orientation }
func (b *Body) Velocity() mgl64.Vec3            { return b.velocity }
func (b *Body) AngularVelocity() mgl64.Vec3     { return b.angularVelocity }
func (b *Body) SetPosition(p mgl64.Vec3)        { b.position = p }
func (b *Body) SetVelocity(v mgl64.Vec3)        { b.velocity = v }
func (b *Body) SetAngularVelocity(w mgl64.Vec3) { b.angularVelocity = w }

// SetOrientation stores q normalized
func (b *Body) SetOrientation(q mgl64.Quat) {
	b.orientation = q.Normalize()
}

// Transform returns the body's world transform
func (b *Body) Transform() vmath.Transform {
	return vmath.Transform{Position: b.position, Orientation: b.orientation}
}

// SetTransform replaces position and orientation
func (b *Body) SetTransform(t vmath.Transform) {
	b.position = t.Position
	b.SetOrientation(t.Orientation)
}

// PointVelocity returns the velocity of a world point attached to the body
func (b *Body) PointVelocity(p mgl64.Vec3) mgl64.Vec3 {
	return b.velocity.Add(b.angularVelocity.Cross(p.Sub(b.position)))
}

// ApplyForce accumulates a force acting at world point p
func (b *Body) ApplyForce(f, p mgl64.Vec3) {
	b.force = b.force.Add(f)
	b.torque = b.torque.Add(p.Sub(b.position).Cross(f))
}

// ApplyCentralForce accumulates a force through the center of mass
func (b *Body) ApplyCentralForce(f mgl64.Vec3) {
	b.force = b.force.Add(f)
}

// ApplyImpulse changes velocities immediately for an impulse at world point p
func (b *Body) ApplyImpulse(j, p mgl64.Vec3) {
	b.velocity = b.velocity.Add(j.Mul(b.invMass))
	b.angularVelocity = b.angularVelocity.Add(b.InvInertiaWorld(p.Sub(b.position).Cross(j)))
}

// InvInertiaWorld applies the world-space inverse inertia tensor to v
func (b *Body) InvInertiaWorld(v mgl64.Vec3) mgl64.Vec3 {
	local := b.orientation.Conjugate().Rotate(v)
	local = mgl64.Vec3{
		local[0] * b.invInertiaLocal[0],
		local[1] * b.invInertiaLocal[1],
		local[2] * b.invInertiaLocal[2],
	}
	return b.orientation.Rotate(local)
}

// integrateVelocity performs v = v + (g + F/m)*dt; w = w + I⁻¹τ*dt
func (b *Body) integrateVelocity(dt float64, gravity mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.velocity = b.velocity.Add(gravity.Add(b.force.Mul(b.invMass)).Mul(dt))
	b.angularVelocity = b.angularVelocity.Add(b.InvInertiaWorld(b.torque).Mul(dt))
}

// integratePosition performs p = p + v*dt and first-order quaternion integration
func (b *Body) integratePosition(dt float64) {
	if b.invMass == 0 {
		return
	}
	b.position = b.position.Add(b.velocity.Mul(dt))
	if b.angularVelocity.LenSqr() > 0 {
		spin := mgl64.Quat{V: b.angularVelocity}.Mul(b.orientation).Scale(0.5 * dt)
		b.orientation = b.orientation.Add(spin).Normalize()
	}
}

func (b *Body) clearForces() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

// corners returns the eight box corners in world space
func (b *Body) corners() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	h := b.halfExtents
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				out[i] = b.position.Add(b.orientation.Rotate(mgl64.Vec3{sx * h[0], sy * h[1], sz * h[2]}))
				i++
			}
		}
	}
	return out
}
