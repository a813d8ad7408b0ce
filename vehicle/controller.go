// Package vehicle orchestrates one drivable car: it turns held input into drivetrain,
// steering and brake commands before each physics step, and applies air control,
// speed tracking and wheel transform sync after it
package vehicle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lixenwraith/raycar/aircontrol"
	"github.com/lixenwraith/raycar/drivetrain"
	"github.com/lixenwraith/raycar/input"
	"github.com/lixenwraith/raycar/physics"
	"github.com/lixenwraith/raycar/status"
	"github.com/lixenwraith/raycar/steering"
	"github.com/lixenwraith/raycar/vmath"
)

// Horn is sounded on the horn action's press edge
type Horn interface {
	Honk()
}

// Options carries the optional collaborators of a controller
type Options struct {
	Name   string // metric prefix; defaults to the first 8 hex digits of the ID
	Log    *zap.Logger
	Status *status.Registry
	Horn   Horn
	Manual bool // commands come only from the public control surface, input is ignored
}

// Controller owns the drivetrain, steering and air state of one chassis
// Exactly one controller writes a given chassis; all methods run on the simulation goroutine
type Controller struct {
	id   uuid.UUID
	name string
	cfg  Config
	log  *zap.Logger

	body  *physics.Body
	rv    *physics.RaycastVehicle
	drive *drivetrain.Model
	steer *steering.Damper
	air   *aircontrol.Stabilizer

	input  input.State
	manual bool
	horn   Horn
	stats  *metrics

	world    *physics.World
	preHook  physics.HookID
	postHook physics.HookID

	speed      float64
	wheels     []vmath.Transform
	lastValid  vmath.Transform
	recoveries int
	invalid    bool
}

// New builds the chassis, registers every wheel and seals the wheel set
// A config without a complete, valid wheel set yields ErrNotDrivable
func New(cfg Config, opts Options) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	name := opts.Name
	if name == "" {
		name = id.String()[:8]
	}
	log = log.With(zap.String("vehicle", name))

	ch := cfg.Chassis
	body := physics.NewBox(ch.Mass, ch.HalfExtents, ch.Friction, ch.Restitution)
	rv := physics.NewRaycastVehicle(body, len(cfg.Wheels))
	for i, d := range cfg.Wheels {
		if _, err := rv.AddWheel(d); err != nil {
			return nil, fmt.Errorf("%w: wheel %d: %w", ErrNotDrivable, i, err)
		}
	}
	if err := rv.Suspension().Seal(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDrivable, err)
	}

	drive, err := drivetrain.New(cfg.Drivetrain, log)
	if err != nil {
		return nil, err
	}
	steer, err := steering.NewDamper(cfg.Steering)
	if err != nil {
		return nil, err
	}
	air, err := aircontrol.New(cfg.Air)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		id:        id,
		name:      name,
		cfg:       cfg,
		log:       log,
		body:      body,
		rv:        rv,
		drive:     drive,
		steer:     steer,
		air:       air,
		manual:    opts.Manual,
		horn:      opts.Horn,
		stats:     newMetrics(opts.Status, name),
		lastValid: body.Transform(),
	}
	log.Debug("vehicle created", zap.Int("wheels", rv.NumWheels()), zap.Stringer("id", id))
	return c, nil
}

func (c *Controller) ID() uuid.UUID                    { return c.id }
func (c *Controller) Name() string                     { return c.name }
func (c *Controller) Config() Config                   { return c.cfg }
func (c *Controller) Body() *physics.Body              { return c.body }
func (c *Controller) Raycast() *physics.RaycastVehicle { return c.rv }
func (c *Controller) InWorld() bool                    { return c.world != nil }
func (c *Controller) Invalid() bool                    { return c.invalid }
func (c *Controller) Manual() bool                     { return c.manual }

// Speed is the chassis velocity along its forward axis as of the last post-step
func (c *Controller) Speed() float64 { return c.speed }

// GroundedCount is the number of wheels touching ground on the last step
func (c *Controller) GroundedCount() int { return c.rv.NumWheelsOnGround() }

func (c *Controller) Gear() drivetrain.Gear         { return c.drive.Gear() }
func (c *Controller) Drivetrain() *drivetrain.Model { return c.drive }
func (c *Controller) SteeringAngle() float64        { return c.steer.Current() }
func (c *Controller) AirTime() float64              { return c.air.AirTime() }
func (c *Controller) Air() *aircontrol.Stabilizer   { return c.air }

// Input exposes the held action state; edges are cleared after each pre-step
func (c *Controller) Input() *input.State { return &c.input }

// SetManual switches between input-driven and public-surface-driven control
func (c *Controller) SetManual(manual bool) { c.manual = manual }

// Transform returns the chassis world transform
func (c *Controller) Transform() vmath.Transform { return c.body.Transform() }

// SetPosition moves the chassis immediately; a read without a step returns exactly p
func (c *Controller) SetPosition(p mgl64.Vec3) {
	c.body.SetPosition(p)
	c.lastValid = c.body.Transform()
	c.syncWheels()
}

// SetTransform places the chassis immediately
func (c *Controller) SetTransform(t vmath.Transform) {
	c.body.SetTransform(t)
	c.lastValid = c.body.Transform()
	c.syncWheels()
}

// SetVelocity sets the chassis linear velocity and refreshes Speed
func (c *Controller) SetVelocity(v mgl64.Vec3) {
	c.body.SetVelocity(v)
	c.speed = v.Dot(c.body.Transform().Forward())
}

// WheelTransforms returns a copy of the wheel world transforms; nil when not in a world
func (c *Controller) WheelTransforms() []vmath.Transform {
	if c.wheels == nil {
		return nil
	}
	out := make([]vmath.Transform, len(c.wheels))
	copy(out, c.wheels)
	return out
}

// ApplyEngineForce sets the drive force on every driven wheel
func (c *Controller) ApplyEngineForce(force float64) {
	if !vmath.IsFinite(force) {
		force = 0
	}
	for i, d := range c.cfg.Wheels {
		if d.Driven {
			c.rv.ApplyEngineForce(force, i)
		}
	}
}

// SetSteeringValue sets every steered wheel's angle, clamped to the steering range
func (c *Controller) SetSteeringValue(angle float64) {
	if !vmath.IsFinite(angle) {
		angle = 0
	}
	angle = vmath.Clamp(angle, -c.cfg.Steering.MaxSteer, c.cfg.Steering.MaxSteer)
	for i, d := range c.cfg.Wheels {
		if d.Steered {
			c.rv.SetSteeringValue(angle, i)
		}
	}
}

// SetBrake sets the brake force on every wheel
func (c *Controller) SetBrake(force float64) {
	if !vmath.IsFinite(force) || force < 0 {
		force = 0
	}
	for i := range c.cfg.Wheels {
		c.rv.SetBrake(force, i)
	}
}

// ResetControls zeroes all input-derived state
// Every held action is released with a justReleased edge so listeners see the release
func (c *Controller) ResetControls() {
	c.input.ReleaseAll()
	c.steer.SetTarget(0)
	c.ApplyEngineForce(0)
	c.SetBrake(0)
	c.log.Debug("controls reset")
}

// AddToWorld attaches chassis, wheels and both hooks to w in one call
// The controller pre-step is registered ahead of the raycast vehicle's so commands land in the same step
func (c *Controller) AddToWorld(w *physics.World) error {
	if c.world != nil {
		return ErrAlreadyAdded
	}
	if c.invalid {
		return fmt.Errorf("%w: marked invalid", ErrNotDrivable)
	}
	pre := w.AddPreStep(c.preStep)
	if err := c.rv.AddToWorld(w); err != nil {
		w.RemoveHook(pre)
		return fmt.Errorf("%w: %w", ErrNotDrivable, err)
	}
	c.preHook = pre
	c.postHook = w.AddPostStep(c.postStep)
	c.world = w
	c.wheels = make([]vmath.Transform, c.rv.NumWheels())
	c.lastValid = c.body.Transform()
	c.syncWheels()
	c.log.Debug("vehicle added", zap.Int("bodies", w.BodyCount()))
	return nil
}

// RemoveFromWorld detaches hooks, chassis and wheel transforms together
// Hook removal takes effect immediately, even from inside a step
func (c *Controller) RemoveFromWorld() error {
	if c.world == nil {
		return ErrNotAdded
	}
	w := c.world
	w.RemoveHook(c.preHook)
	w.RemoveHook(c.postHook)
	err := c.rv.RemoveFromWorld()
	c.world = nil
	c.preHook, c.postHook = 0, 0
	c.wheels = nil
	c.log.Debug("vehicle removed", zap.Bool("invalid", c.invalid))
	return err
}

// preStep turns held input into wheel commands before velocity integration
func (c *Controller) preStep(dt float64) {
	if c.invalid || c.manual {
		c.input.ClearEdges()
		return
	}
	in := &c.input

	if in.JustPressed(input.ActionHorn) && c.horn != nil {
		c.horn.Honk()
	}

	throttle := in.Pressed(input.ActionThrottle)
	reverse := in.Pressed(input.ActionReverse)
	prevGear := c.drive.Gear()
	c.drive.Update(throttle, reverse, c.speed, c.rv.NumWheelsOnGround(), dt)
	if g := c.drive.Gear(); g != prevGear {
		c.stats.shift(g)
	}
	c.ApplyEngineForce(c.drive.WheelForce())

	t := c.body.Transform()
	drift := steering.DriftAngle(c.body.Velocity(), t.Forward(), t.Up())
	c.steer.SetTarget(c.cfg.Steering.Target(in.Pressed(input.ActionLeft), in.Pressed(input.ActionRight), c.speed, drift))
	c.SetSteeringValue(c.steer.Simulate(dt))

	brake := 0.0
	if in.Pressed(input.ActionHandbrake) {
		brake = c.cfg.HandbrakeForce
	}
	for i, d := range c.cfg.Wheels {
		if d.Handbrake {
			c.rv.SetBrake(brake, i)
		}
	}

	in.ClearEdges()
}

// postStep reads the resolved state, applies air control and syncs wheel transforms
func (c *Controller) postStep(dt float64) {
	if c.invalid {
		return
	}
	if !c.resolvedFinite() {
		c.recover()
		return
	}
	c.recoveries = 0

	t := c.body.Transform()
	c.speed = c.body.Velocity().Dot(t.Forward())

	var ai aircontrol.Input
	if !c.manual {
		ai = aircontrol.Input{
			Throttle: c.input.Pressed(input.ActionThrottle),
			Reverse:  c.input.Pressed(input.ActionReverse),
			Left:     c.input.Pressed(input.ActionLeft),
			Right:    c.input.Pressed(input.ActionRight),
		}
	}
	grounded := c.rv.NumWheelsOnGround()
	c.air.Step(c.body, grounded, ai, c.speed, dt)

	c.lastValid = c.body.Transform()
	c.syncWheels()
	c.stats.update(c, grounded)
}

func (c *Controller) resolvedFinite() bool {
	return c.body.Transform().Finite() &&
		vmath.V3Finite(c.body.Velocity()) &&
		vmath.V3Finite(c.body.AngularVelocity())
}

// recover snaps the chassis back to the last valid transform at rest
// After MaxRecoveries consecutive failures the controller is marked invalid for removal
func (c *Controller) recover() {
	c.recoveries++
	c.body.SetTransform(c.lastValid)
	c.body.SetVelocity(mgl64.Vec3{})
	c.body.SetAngularVelocity(mgl64.Vec3{})
	c.rv.ResetWheelMotion()
	c.speed = 0
	c.stats.recovery()

	if c.recoveries >= c.cfg.MaxRecoveries {
		c.invalid = true
		c.ApplyEngineForce(0)
		c.log.Error("vehicle state diverged, marking invalid", zap.Int("recoveries", c.recoveries))
		return
	}
	c.log.Warn("non-finite vehicle state, snapped to last valid transform", zap.Int("recoveries", c.recoveries))
}

// syncWheels refreshes wheel transforms from the integrator; no-op when detached
func (c *Controller) syncWheels() {
	for i := range c.wheels {
		c.wheels[i] = c.rv.UpdateWheelTransform(i)
	}
}
