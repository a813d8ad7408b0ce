package suspension

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/raycar/vmath"
)

// Chassis is the borrowed rigid body the probes hang from
type Chassis interface {
	Transform() vmath.Transform
	Mass() float64
	PointVelocity(worldPoint mgl64.Vec3) mgl64.Vec3
	ApplyForce(force, worldPoint mgl64.Vec3)
}

// RayCaster answers ground probes
type RayCaster interface {
	Raycast(from, dir mgl64.Vec3, maxDist float64) (vmath.RayHit, bool)
}

// Controller probes the ground under each wheel and applies spring/damper support
type Controller struct {
	wheels   *WheelSet
	grounded int
}

// NewController creates a controller with an unsealed wheel set
func NewController(capacity int) *Controller {
	return &Controller{wheels: NewWheelSet(capacity)}
}

// RegisterWheel adds a wheel before the set is sealed
func (c *Controller) RegisterWheel(d Descriptor) (Handle, error) {
	return c.wheels.Add(d)
}

// Seal fixes the wheel count; Step refuses to run on an unsealed set
func (c *Controller) Seal() error {
	return c.wheels.Seal()
}

func (c *Controller) Wheels() *WheelSet { return c.wheels }

// GroundedCount is the number of wheels that found ground on the last Step
func (c *Controller) GroundedCount() int { return c.grounded }

// Step probes every wheel, applies suspension forces to chassis and returns the grounded count
// A wheel whose probe misses exerts no force and is marked not grounded
func (c *Controller) Step(chassis Chassis, ground RayCaster) int {
	if !c.wheels.Sealed() {
		c.grounded = 0
		return 0
	}

	t := chassis.Transform()
	down := t.Direction(vmath.LocalDown)
	up := down.Mul(-1)
	mass := chassis.Mass()

	grounded := 0
	wheels := c.wheels.All()
	for i := range wheels {
		w := &wheels[i]
		anchor := t.Point(w.Anchor)

		hit, ok := ground.Raycast(anchor, down, w.ProbeLength())
		if !ok {
			w.resetContact()
			continue
		}

		length := hit.Distance - w.Radius
		compression := vmath.Clamp(w.RestLength-length, 0, w.MaxTravel)

		w.Grounded = true
		w.Compression = compression
		w.SuspensionLength = w.RestLength - compression
		w.ContactPoint = hit.Point
		w.ContactNormal = hit.Normal
		grounded++

		// Separating velocity along the contact normal; negative while compressing
		vn := chassis.PointVelocity(hit.Point).Dot(hit.Normal)
		damping := w.DampingRelaxation
		if vn < 0 {
			damping = w.DampingCompression
		}

		force := (w.Stiffness*compression - damping*vn) * mass
		force = vmath.Clamp(force, 0, w.MaxForce)
		w.SuspensionForce = force
		if force == 0 {
			continue
		}

		chassis.ApplyForce(hit.Normal.Mul(force), RollPoint(t.Position, up, hit.Point, w.RollInfluence))
	}

	c.grounded = grounded
	return grounded
}

// RollPoint moves a contact point toward the chassis center along up by (1 - influence)
// Influence 1 applies at the contact, 0 at the center-of-mass height
func RollPoint(center, up, contact mgl64.Vec3, influence float64) mgl64.Vec3 {
	rel := contact.Sub(center)
	h := rel.Dot(up)
	return center.Add(rel.Sub(up.Mul(h * (1 - influence))))
}
