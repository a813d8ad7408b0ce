// Package aircontrol corrects chassis angular velocity while no wheel touches the ground
package aircontrol

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/raycar/vmath"
)

var ErrInvalidConfig = errors.New("aircontrol: invalid config")

// Body is the slice of the chassis the stabilizer reads and writes
type Body interface {
	Transform() vmath.Transform
	AngularVelocity() mgl64.Vec3
	SetAngularVelocity(w mgl64.Vec3)
}

// Input is the directional intent held this tick
type Input struct {
	Throttle bool
	Reverse  bool
	Left     bool
	Right    bool
}

// Config holds the airborne tuning constants
type Config struct {
	RampDuration     float64 `mapstructure:"ramp_duration" yaml:"ramp_duration"`
	MaxSpin          float64 `mapstructure:"max_spin" yaml:"max_spin"`
	SpinAcceleration float64 `mapstructure:"spin_acceleration" yaml:"spin_acceleration"`
	FlipGain         float64 `mapstructure:"flip_gain" yaml:"flip_gain"`
}

func (c Config) Validate() error {
	switch {
	case !vmath.IsFinite(c.RampDuration) || c.RampDuration <= 0:
		return fmt.Errorf("%w: ramp_duration=%v", ErrInvalidConfig, c.RampDuration)
	case !vmath.IsFinite(c.MaxSpin) || c.MaxSpin <= 0:
		return fmt.Errorf("%w: max_spin=%v", ErrInvalidConfig, c.MaxSpin)
	case !vmath.IsFinite(c.SpinAcceleration) || c.SpinAcceleration < 0:
		return fmt.Errorf("%w: spin_acceleration=%v", ErrInvalidConfig, c.SpinAcceleration)
	case !vmath.IsFinite(c.FlipGain) || c.FlipGain < 0:
		return fmt.Errorf("%w: flip_gain=%v", ErrInvalidConfig, c.FlipGain)
	}
	return nil
}

// Stabilizer holds the air-time accumulator and the last applied correction
type Stabilizer struct {
	cfg Config

	airTime       float64
	spinInfluence float64
	flipInfluence float64
	lastIncrement float64
	lastApplied   mgl64.Vec3
}

func New(cfg Config) (*Stabilizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Stabilizer{cfg: cfg}, nil
}

// AirTime is seconds since the last tick with a grounded wheel
func (s *Stabilizer) AirTime() float64 { return s.airTime }

// LastIncrement is the per-axis increment magnitude computed on the last airborne tick
func (s *Stabilizer) LastIncrement() float64 { return s.lastIncrement }

// LastApplied is the angular velocity change actually written on the last tick
func (s *Stabilizer) LastApplied() mgl64.Vec3 { return s.lastApplied }

func (s *Stabilizer) SpinInfluence() float64 { return s.spinInfluence }
func (s *Stabilizer) FlipInfluence() float64 { return s.flipInfluence }
func (s *Stabilizer) Config() Config         { return s.cfg }

// Reset clears the accumulator as if the vehicle had just landed
func (s *Stabilizer) Reset() {
	s.airTime = 0
	s.spinInfluence = 0
	s.flipInfluence = 0
	s.lastIncrement = 0
	s.lastApplied = mgl64.Vec3{}
}

// Step applies one tick of air control; speed is the signed forward speed
// Any grounded wheel resets the accumulator on the same tick and skips correction
func (s *Stabilizer) Step(body Body, grounded int, in Input, speed, dt float64) {
	s.lastApplied = mgl64.Vec3{}
	if grounded > 0 {
		s.airTime = 0
		s.spinInfluence = 0
		s.flipInfluence = 0
		s.lastIncrement = 0
		return
	}
	if dt > 0 && vmath.IsFinite(dt) {
		s.airTime += dt
	}

	tr := body.Transform()
	up := tr.Up()

	s.spinInfluence = vmath.Clamp01(s.airTime/s.cfg.RampDuration) * vmath.Clamp01(speed)

	flipSpeed := vmath.Clamp01(1 - speed)
	upFactor := up.Dot(vmath.LocalDown)/2 + 0.5
	s.flipInfluence = flipSpeed * upFactor * s.cfg.FlipGain

	inc := s.cfg.SpinAcceleration * (s.spinInfluence + s.flipInfluence)
	s.lastIncrement = inc
	if inc <= 0 {
		return
	}

	w := body.AngularVelocity()
	before := w
	forward := tr.Forward()
	right := tr.Right()

	// Roll around forward: positive rotation lowers the right side
	switch {
	case in.Right && !in.Left:
		w = s.push(w, forward, inc)
	case in.Left && !in.Right:
		w = s.push(w, forward.Mul(-1), inc)
	}
	// Pitch around right: positive rotation lifts the nose
	switch {
	case in.Throttle && !in.Reverse:
		w = s.push(w, right.Mul(-1), inc)
	case in.Reverse && !in.Throttle:
		w = s.push(w, right, inc)
	}

	if w != before {
		body.SetAngularVelocity(w)
		s.lastApplied = w.Sub(before)
	}
}

// push adds up to inc along axis without lifting the projection past MaxSpin
// Spin already above the cap is left alone
func (s *Stabilizer) push(w, axis mgl64.Vec3, inc float64) mgl64.Vec3 {
	proj := w.Dot(axis)
	room := s.cfg.MaxSpin - proj
	if room <= 0 {
		return w
	}
	if inc > room {
		inc = room
	}
	return w.Add(axis.Mul(inc))
}
