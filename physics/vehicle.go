package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/raycar/suspension"
	"github.com/lixenwraith/raycar/vmath"
)

var (
	ErrVehicleAttached = errors.New("physics: raycast vehicle already in a world")
	ErrVehicleDetached = errors.New("physics: raycast vehicle not in a world")
)

// wheelCommand is the per-wheel control and visual state kept beside the suspension wheel
type wheelCommand struct {
	steering    float64
	engineForce float64
	brake       float64

	rotation      float64 // spin angle around the axle
	deltaRotation float64
	sliding       bool

	transform vmath.Transform
}

// WheelInfo is a read-only snapshot of one wheel
type WheelInfo struct {
	Index           int
	Grounded        bool
	Sliding         bool
	Compression     float64
	SuspensionForce float64
	Steering        float64
	EngineForce     float64
	Brake           float64
	Rotation        float64
}

// RaycastVehicle drives a chassis body on raycast wheels
// Its pre-step hook runs suspension then tire friction for the chassis
type RaycastVehicle struct {
	chassis    *Body
	suspension *suspension.Controller
	commands   []wheelCommand

	world *World
	hook  HookID
}

// NewRaycastVehicle creates a vehicle for chassis with room for capacity wheels
func NewRaycastVehicle(chassis *Body, capacity int) *RaycastVehicle {
	return &RaycastVehicle{
		chassis:    chassis,
		suspension: suspension.NewController(capacity),
		commands:   make([]wheelCommand, 0, capacity),
	}
}

// AddWheel registers a wheel and returns its index
func (v *RaycastVehicle) AddWheel(d suspension.Descriptor) (int, error) {
	h, err := v.suspension.RegisterWheel(d)
	if err != nil {
		return -1, err
	}
	v.commands = append(v.commands, wheelCommand{})
	v.refreshTransform(int(h))
	return int(h), nil
}

func (v *RaycastVehicle) Chassis() *Body                     { return v.chassis }
func (v *RaycastVehicle) Suspension() *suspension.Controller { return v.suspension }
func (v *RaycastVehicle) NumWheels() int                     { return len(v.commands) }
func (v *RaycastVehicle) InWorld() bool                      { return v.world != nil }

// NumWheelsOnGround is the grounded count of the most recent step
func (v *RaycastVehicle) NumWheelsOnGround() int {
	return v.suspension.GroundedCount()
}

func (v *RaycastVehicle) valid(i int) bool {
	return i >= 0 && i < len(v.commands)
}

// SetSteeringValue sets wheel i's steering angle around chassis up, radians
func (v *RaycastVehicle) SetSteeringValue(angle float64, i int) {
	if v.valid(i) {
		v.commands[i].steering = angle
	}
}

// ApplyEngineForce sets wheel i's drive force along its forward axis
func (v *RaycastVehicle) ApplyEngineForce(force float64, i int) {
	if v.valid(i) {
		v.commands[i].engineForce = force
	}
}

// SetBrake sets wheel i's brake force magnitude
func (v *RaycastVehicle) SetBrake(force float64, i int) {
	if v.valid(i) {
		v.commands[i].brake = force
	}
}

// Wheel returns a snapshot of wheel i
func (v *RaycastVehicle) Wheel(i int) WheelInfo {
	if !v.valid(i) {
		return WheelInfo{Index: -1}
	}
	w := v.suspension.Wheels().At(suspension.Handle(i))
	c := v.commands[i]
	return WheelInfo{
		Index:           i,
		Grounded:        w.Grounded,
		Sliding:         c.sliding,
		Compression:     w.Compression,
		SuspensionForce: w.SuspensionForce,
		Steering:        c.steering,
		EngineForce:     c.engineForce,
		Brake:           c.brake,
		Rotation:        c.rotation,
	}
}

// AddToWorld seals the wheel set, adds the chassis and registers the pre-step hook
func (v *RaycastVehicle) AddToWorld(w *World) error {
	if v.world != nil {
		return ErrVehicleAttached
	}
	if err := v.suspension.Seal(); err != nil {
		return fmt.Errorf("raycast vehicle: %w", err)
	}
	w.AddBody(v.chassis)
	v.hook = w.AddPreStep(v.step)
	v.world = w
	return nil
}

// RemoveFromWorld unregisters the hook and removes the chassis
func (v *RaycastVehicle) RemoveFromWorld() error {
	if v.world == nil {
		return ErrVehicleDetached
	}
	v.world.RemoveHook(v.hook)
	err := v.world.RemoveBody(v.chassis.ID())
	v.world = nil
	v.hook = 0
	return err
}

// step runs suspension then friction; registered as a pre-step hook
func (v *RaycastVehicle) step(dt float64) {
	grounded := v.suspension.Step(v.chassis, v.world)
	v.applyFriction(grounded, dt)
}

func (v *RaycastVehicle) applyFriction(grounded int, dt float64) {
	t := v.chassis.Transform()
	up := t.Up()
	wheels := v.suspension.Wheels().All()

	massShare := 0.0
	if grounded > 0 {
		massShare = v.chassis.Mass() / float64(grounded)
	}

	for i := range wheels {
		w := &wheels[i]
		c := &v.commands[i]
		c.sliding = false

		if !w.Grounded {
			c.deltaRotation *= 0.99
			c.rotation += c.deltaRotation
			continue
		}

		fwd, side := v.wheelAxes(t, c.steering, w.ContactNormal)
		vel := v.chassis.PointVelocity(w.ContactPoint)
		vLong := vel.Dot(fwd)

		long, lat, sliding := SlipForce(SlipInput{
			EngineForce:  c.engineForce,
			BrakeForce:   c.brake,
			VLong:        vLong,
			VLat:         vel.Dot(side),
			MassShare:    massShare,
			NormalForce:  w.SuspensionForce,
			FrictionSlip: w.FrictionSlip,
			Dt:           dt,
		})
		c.sliding = sliding

		force := fwd.Mul(long).Add(side.Mul(lat))
		if force.LenSqr() > 0 {
			v.chassis.ApplyForce(force, suspension.RollPoint(t.Position, up, w.ContactPoint, w.RollInfluence))
		}

		c.deltaRotation = vLong * dt / w.Radius
		c.rotation += c.deltaRotation
	}
}

// wheelAxes returns the wheel's forward and side directions in the contact plane
func (v *RaycastVehicle) wheelAxes(t vmath.Transform, steering float64, normal mgl64.Vec3) (fwd, side mgl64.Vec3) {
	dir := t.Orientation.Mul(mgl64.QuatRotate(steering, vmath.LocalUp)).Rotate(vmath.LocalForward)
	fwd = vmath.V3SafeNormalize(vmath.V3Reject(dir, normal))
	side = vmath.V3SafeNormalize(normal.Cross(fwd))
	return fwd, side
}

// ResetWheelMotion zeroes wheel spin, used after the chassis is teleported or recovered
func (v *RaycastVehicle) ResetWheelMotion() {
	for i := range v.commands {
		c := &v.commands[i]
		c.rotation = 0
		c.deltaRotation = 0
		c.sliding = false
	}
}

// UpdateWheelTransform recomputes and returns wheel i's world transform
func (v *RaycastVehicle) UpdateWheelTransform(i int) vmath.Transform {
	if !v.valid(i) {
		return vmath.IdentityTransform()
	}
	v.refreshTransform(i)
	return v.commands[i].transform
}

// WheelTransform returns the last computed world transform of wheel i
func (v *RaycastVehicle) WheelTransform(i int) vmath.Transform {
	if !v.valid(i) {
		return vmath.IdentityTransform()
	}
	return v.commands[i].transform
}

func (v *RaycastVehicle) refreshTransform(i int) {
	t := v.chassis.Transform()
	set := v.suspension.Wheels()
	c := &v.commands[i]

	steer := mgl64.QuatRotate(c.steering, vmath.LocalUp)
	spin := mgl64.QuatRotate(c.rotation, vmath.LocalRight)
	c.transform = vmath.Transform{
		Position:    set.HubWorld(suspension.Handle(i), t),
		Orientation: t.Orientation.Mul(steer).Mul(spin),
	}
}
