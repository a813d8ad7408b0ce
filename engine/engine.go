// Package engine runs the fixed-step physics world, owns the spawned vehicles and
// routes player input and camera focus to the active one
package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/lixenwraith/raycar/config"
	"github.com/lixenwraith/raycar/input"
	"github.com/lixenwraith/raycar/physics"
	"github.com/lixenwraith/raycar/status"
	"github.com/lixenwraith/raycar/telemetry"
	"github.com/lixenwraith/raycar/vehicle"
	"github.com/lixenwraith/raycar/vmath"
)

// SpawnOptions places a new vehicle
type SpawnOptions struct {
	Name             string
	Position         mgl64.Vec3
	Orientation      mgl64.Quat // zero value means identity
	Velocity         mgl64.Vec3
	PlayerControlled bool            // becomes the input and camera target
	Manual           bool            // driven only through the control surface
	Config           *vehicle.Config // nil uses the engine's vehicle config
}

// Options carries the engine's optional collaborators
type Options struct {
	Log      *zap.Logger
	Status   *status.Registry
	Recorder telemetry.Recorder
	Horn     vehicle.Horn
}

// Engine steps the world at a fixed rate and owns every spawned vehicle
// All methods run on the simulation goroutine
type Engine struct {
	cfg config.Config
	log *zap.Logger

	world       *physics.World
	vehicles    registry
	active      Handle
	dt          float64
	maxSubSteps int
	accumulator float64
	simTime     float64

	status    *status.Registry
	statSteps *atomic.Int64
	statLive  *atomic.Int64
	statDrop  *atomic.Int64
	statTel   *atomic.Int64

	recorder  telemetry.Recorder
	every     uint64
	recordErr int
	horn      vehicle.Horn
}

// New validates cfg and builds an empty world
func New(cfg config.Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	reg := opts.Status
	if reg == nil {
		reg = status.NewRegistry()
	}

	var ground physics.Ground = physics.NoGround{}
	if cfg.Sim.Ground == config.GroundFlat {
		ground = physics.FlatGround{Height: cfg.Sim.GroundHeight}
	}

	e := &Engine{
		cfg:         cfg,
		log:         log,
		world:       physics.NewWorld(cfg.Sim.Gravity, ground),
		dt:          cfg.Sim.Timestep(),
		maxSubSteps: cfg.Sim.MaxSubSteps,
		status:      reg,
		statSteps:   reg.Ints.Get(status.MetricSteps),
		statLive:    reg.Ints.Get(status.MetricVehicles),
		statDrop:    reg.Ints.Get(status.MetricDropped),
		statTel:     reg.Ints.Get(status.MetricTelemetry),
		recorder:    opts.Recorder,
		every:       uint64(cfg.Telemetry.Every),
		horn:        opts.Horn,
	}
	if e.every == 0 {
		e.every = 1
	}
	log.Info("engine ready",
		zap.Int("physics_hz", cfg.Sim.PhysicsHz),
		zap.String("ground", cfg.Sim.Ground),
		zap.Bool("telemetry", opts.Recorder != nil),
	)
	return e, nil
}

func (e *Engine) World() *physics.World    { return e.world }
func (e *Engine) Status() *status.Registry { return e.status }
func (e *Engine) Timestep() float64        { return e.dt }
func (e *Engine) SimTime() float64         { return e.simTime }
func (e *Engine) Steps() uint64            { return e.world.Steps() }
func (e *Engine) VehicleCount() int        { return e.vehicles.live }
func (e *Engine) Config() config.Config    { return e.cfg }

// Spawn builds a vehicle, places it and adds it to the world
func (e *Engine) Spawn(opts SpawnOptions) (Handle, error) {
	vcfg := e.cfg.Vehicle
	if opts.Config != nil {
		vcfg = *opts.Config
	}
	rot := opts.Orientation
	if rot == (mgl64.Quat{}) {
		rot = mgl64.QuatIdent()
	}
	t := vmath.Transform{Position: opts.Position, Orientation: rot.Normalize()}
	if !t.Finite() || !vmath.V3Finite(opts.Velocity) {
		return Handle{}, fmt.Errorf("%w: non-finite spawn", vehicle.ErrNotDrivable)
	}

	var horn vehicle.Horn
	if opts.PlayerControlled {
		horn = e.horn
	}
	c, err := vehicle.New(vcfg, vehicle.Options{
		Name:   opts.Name,
		Log:    e.log,
		Status: e.status,
		Horn:   horn,
		Manual: opts.Manual,
	})
	if err != nil {
		return Handle{}, err
	}
	c.SetTransform(t)
	c.SetVelocity(opts.Velocity)

	if err := c.AddToWorld(e.world); err != nil {
		e.status.Forget(c.Name())
		return Handle{}, err
	}
	h := e.vehicles.insert(c)
	e.statLive.Store(int64(e.vehicles.live))
	if opts.PlayerControlled {
		e.setActive(h, c)
	}
	e.log.Info("vehicle spawned",
		zap.Stringer("handle", h),
		zap.String("name", c.Name()),
		zap.Bool("player", opts.PlayerControlled),
	)
	return h, nil
}

// Remove detaches the vehicle; its handle goes stale
func (e *Engine) Remove(h Handle) error {
	c, err := e.vehicles.remove(h)
	if err != nil {
		return err
	}
	if err := c.RemoveFromWorld(); err != nil {
		e.log.Warn("vehicle detach", zap.Stringer("handle", h), zap.Error(err))
	}
	e.status.Forget(c.Name())
	if e.active == h {
		e.active = Handle{}
	}
	e.statLive.Store(int64(e.vehicles.live))
	e.log.Info("vehicle removed", zap.Stringer("handle", h), zap.Bool("invalid", c.Invalid()))
	return nil
}

// Vehicle resolves a handle
func (e *Engine) Vehicle(h Handle) (*vehicle.Controller, error) {
	return e.vehicles.get(h)
}

// Active returns the input and camera target, if any
func (e *Engine) Active() (Handle, bool) {
	if e.active.IsZero() {
		return Handle{}, false
	}
	if _, err := e.vehicles.get(e.active); err != nil {
		return Handle{}, false
	}
	return e.active, true
}

// SetActive moves input focus to h; the previous target's controls are reset
func (e *Engine) SetActive(h Handle) error {
	c, err := e.vehicles.get(h)
	if err != nil {
		return err
	}
	e.setActive(h, c)
	return nil
}

func (e *Engine) setActive(h Handle, c *vehicle.Controller) {
	if e.active == h {
		return
	}
	if prev, err := e.vehicles.get(e.active); err == nil {
		prev.ResetControls()
	}
	e.active = h
	e.log.Debug("active vehicle", zap.Stringer("handle", h), zap.String("name", c.Name()))
}

// CameraTarget is the active vehicle's transform
func (e *Engine) CameraTarget() (vmath.Transform, bool) {
	c, err := e.vehicles.get(e.active)
	if err != nil {
		return vmath.Transform{}, false
	}
	return c.Transform(), true
}

// ApplyInput hands a polled input snapshot to the active vehicle
func (e *Engine) ApplyInput(s input.State) {
	c, err := e.vehicles.get(e.active)
	if err != nil {
		return
	}
	c.Input().Merge(s)
}

// Advance accumulates frameDt and runs whole physics steps, at most MaxSubSteps
// Time beyond that is dropped so a stalled frame cannot spiral; returns steps run
func (e *Engine) Advance(frameDt float64) int {
	if !vmath.IsFinite(frameDt) || frameDt <= 0 {
		return 0
	}
	e.accumulator += frameDt
	n := 0
	for e.accumulator >= e.dt && n < e.maxSubSteps {
		e.Step()
		e.accumulator -= e.dt
		n++
	}
	if e.accumulator >= e.dt {
		dropped := int64(e.accumulator / e.dt)
		e.statDrop.Add(dropped)
		e.accumulator -= float64(dropped) * e.dt
	}
	return n
}

// Alpha is the fraction of a step left in the accumulator, for render interpolation
func (e *Engine) Alpha() float64 { return e.accumulator / e.dt }

// Step runs exactly one physics step, then reaps invalid vehicles and records telemetry
func (e *Engine) Step() {
	e.world.Step(e.dt)
	e.simTime += e.dt
	e.statSteps.Store(int64(e.world.Steps()))

	var dead []Handle
	e.vehicles.each(func(h Handle, c *vehicle.Controller) {
		if c.Invalid() {
			dead = append(dead, h)
		}
	})
	for _, h := range dead {
		e.log.Warn("removing invalid vehicle", zap.Stringer("handle", h))
		_ = e.Remove(h)
	}

	if e.recorder != nil && e.world.Steps()%e.every == 0 {
		e.record()
	}
}

func (e *Engine) record() {
	step := e.world.Steps()
	e.vehicles.each(func(_ Handle, c *vehicle.Controller) {
		if err := e.recorder.Record(sampleOf(c, step, e.simTime)); err != nil {
			e.recordErr++
			// First failure is logged; later ones are only counted
			if e.recordErr == 1 {
				e.log.Error("telemetry record", zap.Error(err))
			}
			return
		}
		e.statTel.Add(1)
	})
}

func sampleOf(c *vehicle.Controller, step uint64, simTime float64) telemetry.Sample {
	t := c.Transform()
	return telemetry.Sample{
		VehicleID:   c.ID().String(),
		Step:        step,
		SimTime:     simTime,
		X:           t.Position.X(),
		Y:           t.Position.Y(),
		Z:           t.Position.Z(),
		QW:          t.Orientation.W,
		QX:          t.Orientation.V.X(),
		QY:          t.Orientation.V.Y(),
		QZ:          t.Orientation.V.Z(),
		Speed:       c.Speed(),
		Gear:        int(c.Gear()),
		Steering:    c.SteeringAngle(),
		Grounded:    c.GroundedCount(),
		AirTime:     c.AirTime(),
		EngineForce: c.Drivetrain().WheelForce(),
	}
}

// Close removes every vehicle and flushes the recorder
func (e *Engine) Close(ctx context.Context) error {
	var handles []Handle
	e.vehicles.each(func(h Handle, _ *vehicle.Controller) { handles = append(handles, h) })
	for _, h := range handles {
		_ = e.Remove(h)
	}
	if e.recorder == nil {
		return nil
	}
	if err := e.recorder.Flush(ctx); err != nil {
		return fmt.Errorf("engine: flush telemetry: %w", err)
	}
	return nil
}
