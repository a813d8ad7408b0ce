// Package steering converges the applied steering angle toward a target with a
// second-order spring-damper
package steering

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/raycar/vmath"
)

var ErrInvalidConfig = errors.New("steering: invalid config")

// Config holds the steering constants
type Config struct {
	MaxSteer        float64 `mapstructure:"max_steer" yaml:"max_steer"`
	Stiffness       float64 `mapstructure:"stiffness" yaml:"stiffness"`
	Damping         float64 `mapstructure:"damping" yaml:"damping"`
	SpeedFactorGain float64 `mapstructure:"speed_factor_gain" yaml:"speed_factor_gain"`
}

func (c Config) Validate() error {
	if !vmath.IsFinite(c.MaxSteer) || c.MaxSteer <= 0 || c.MaxSteer >= math.Pi/2 {
		return fmt.Errorf("%w: max_steer=%v", ErrInvalidConfig, c.MaxSteer)
	}
	if !vmath.IsFinite(c.Stiffness) || c.Stiffness <= 0 {
		return fmt.Errorf("%w: stiffness=%v", ErrInvalidConfig, c.Stiffness)
	}
	if !vmath.IsFinite(c.Damping) || c.Damping < 0 {
		return fmt.Errorf("%w: damping=%v", ErrInvalidConfig, c.Damping)
	}
	if !vmath.IsFinite(c.SpeedFactorGain) || c.SpeedFactorGain < 0 {
		return fmt.Errorf("%w: speed_factor_gain=%v", ErrInvalidConfig, c.SpeedFactorGain)
	}
	return nil
}

// Damper integrates acceleration = k(target − current) − d·velocity
// |current| never exceeds MaxSteer
type Damper struct {
	cfg Config

	current  float64
	velocity float64
	target   float64
}

// NewDamper creates a centered damper
func NewDamper(cfg Config) (*Damper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Damper{cfg: cfg}, nil
}

func (d *Damper) Current() float64  { return d.current }
func (d *Damper) Target() float64   { return d.target }
func (d *Damper) Velocity() float64 { return d.velocity }
func (d *Damper) Config() Config    { return d.cfg }

// SetTarget stores angle clamped to the steering range; non-finite input centers
func (d *Damper) SetTarget(angle float64) {
	if !vmath.IsFinite(angle) {
		angle = 0
	}
	d.target = vmath.Clamp(angle, -d.cfg.MaxSteer, d.cfg.MaxSteer)
}

// Simulate advances one step (velocity, then position) and returns the current angle
func (d *Damper) Simulate(dt float64) float64 {
	acc := d.cfg.Stiffness*(d.target-d.current) - d.cfg.Damping*d.velocity
	d.velocity += acc * dt
	d.current += d.velocity * dt

	limit := d.cfg.MaxSteer
	if d.current > limit || d.current < -limit {
		d.current = vmath.Clamp(d.current, -limit, limit)
		// Stop at the lock instead of pushing through it
		if d.velocity*d.current > 0 {
			d.velocity = 0
		}
	}
	return d.current
}

// Reset centers the wheel and clears motion
func (d *Damper) Reset() {
	d.current = 0
	d.velocity = 0
	d.target = 0
}
