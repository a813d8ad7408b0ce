package vehicle

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/raycar/aircontrol"
	"github.com/lixenwraith/raycar/drivetrain"
	"github.com/lixenwraith/raycar/parameter"
	"github.com/lixenwraith/raycar/steering"
	"github.com/lixenwraith/raycar/suspension"
	"github.com/lixenwraith/raycar/vmath"
)

var (
	ErrNotDrivable  = errors.New("vehicle: not drivable")
	ErrAlreadyAdded = errors.New("vehicle: already added to a world")
	ErrNotAdded     = errors.New("vehicle: not added to a world")
)

// ChassisConfig describes the rigid box the wheels hang from
type ChassisConfig struct {
	Mass        float64    `mapstructure:"mass" yaml:"mass"`
	HalfExtents mgl64.Vec3 `mapstructure:"half_extents" yaml:"half_extents,flow"`
	Friction    float64    `mapstructure:"friction" yaml:"friction"`
	Restitution float64    `mapstructure:"restitution" yaml:"restitution"`
}

// Config is everything needed to build one drivable vehicle
type Config struct {
	Chassis        ChassisConfig           `mapstructure:"chassis" yaml:"chassis"`
	Wheels         []suspension.Descriptor `mapstructure:"wheels" yaml:"wheels"`
	Drivetrain     drivetrain.Config       `mapstructure:"drivetrain" yaml:"drivetrain"`
	Steering       steering.Config         `mapstructure:"steering" yaml:"steering"`
	Air            aircontrol.Config       `mapstructure:"air" yaml:"air"`
	HandbrakeForce float64                 `mapstructure:"handbrake_force" yaml:"handbrake_force"`
	MaxRecoveries  int                     `mapstructure:"max_recoveries" yaml:"max_recoveries"`
}

// DefaultWheelParams returns the stock suspension and tire constants
func DefaultWheelParams() suspension.Params {
	return suspension.Params{
		Stiffness:          parameter.SuspensionStiffness,
		RestLength:         parameter.SuspensionRestLength,
		MaxTravel:          parameter.SuspensionMaxTravel,
		Radius:             parameter.WheelRadius,
		FrictionSlip:       parameter.FrictionSlip,
		DampingCompression: parameter.DampingCompression,
		DampingRelaxation:  parameter.DampingRelaxation,
		RollInfluence:      parameter.RollInfluence,
		MaxForce:           parameter.MaxSuspensionForce,
	}
}

// DefaultWheels returns four driven wheels: front pair steered, rear pair on the handbrake
func DefaultWheels() []suspension.Descriptor {
	p := DefaultWheelParams()
	x, y, z := parameter.WheelTrackHalf, parameter.WheelAnchorY, parameter.WheelBaseHalf
	// +X is chassis left
	return []suspension.Descriptor{
		{Anchor: mgl64.Vec3{x, y, z}, Params: p, Steered: true, Driven: true},
		{Anchor: mgl64.Vec3{-x, y, z}, Params: p, Steered: true, Driven: true},
		{Anchor: mgl64.Vec3{x, y, -z}, Params: p, Driven: true, Handbrake: true},
		{Anchor: mgl64.Vec3{-x, y, -z}, Params: p, Driven: true, Handbrake: true},
	}
}

// DefaultConfig returns the stock car
func DefaultConfig() Config {
	gears := make(drivetrain.GearTable, len(parameter.GearMaxSpeeds))
	copy(gears, parameter.GearMaxSpeeds)

	return Config{
		Chassis: ChassisConfig{
			Mass:        parameter.ChassisMass,
			HalfExtents: mgl64.Vec3{parameter.ChassisHalfWidth, parameter.ChassisHalfHeight, parameter.ChassisHalfLength},
			Friction:    parameter.ChassisFriction,
			Restitution: parameter.ChassisRestitution,
		},
		Wheels: DefaultWheels(),
		Drivetrain: drivetrain.Config{
			BaseForce:          parameter.BaseEngineForce,
			ShiftTime:          parameter.ShiftTime,
			UpshiftFactor:      parameter.UpshiftPowerFactor,
			DownshiftFactor:    parameter.DownshiftPowerFactor,
			ReverseEngageSpeed: parameter.ReverseEngageSpeed,
			Gears:              gears,
		},
		Steering: steering.Config{
			MaxSteer:        parameter.MaxSteer,
			Stiffness:       parameter.SteeringStiffness,
			Damping:         parameter.SteeringDamping,
			SpeedFactorGain: parameter.SteeringSpeedFactor,
		},
		Air: aircontrol.Config{
			RampDuration:     parameter.AirRampDuration,
			MaxSpin:          parameter.AirMaxSpin,
			SpinAcceleration: parameter.AirSpinAcceleration,
			FlipGain:         parameter.AirFlipGain,
		},
		HandbrakeForce: parameter.HandbrakeForce,
		MaxRecoveries:  parameter.MaxConsecutiveRecoveries,
	}
}

// Validate checks every section; wheel problems wrap ErrNotDrivable
func (c Config) Validate() error {
	ch := c.Chassis
	if !vmath.IsFinite(ch.Mass) || ch.Mass <= 0 {
		return fmt.Errorf("%w: chassis mass=%v", ErrNotDrivable, ch.Mass)
	}
	if !vmath.V3Finite(ch.HalfExtents) || ch.HalfExtents.X() <= 0 || ch.HalfExtents.Y() <= 0 || ch.HalfExtents.Z() <= 0 {
		return fmt.Errorf("%w: chassis half_extents=%v", ErrNotDrivable, ch.HalfExtents)
	}
	if len(c.Wheels) == 0 {
		return fmt.Errorf("%w: %w", ErrNotDrivable, suspension.ErrNoWheels)
	}
	for i, w := range c.Wheels {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("%w: wheel %d: %w", ErrNotDrivable, i, err)
		}
	}
	if err := c.Drivetrain.Validate(); err != nil {
		return err
	}
	if err := c.Steering.Validate(); err != nil {
		return err
	}
	if err := c.Air.Validate(); err != nil {
		return err
	}
	if !vmath.IsFinite(c.HandbrakeForce) || c.HandbrakeForce < 0 {
		return fmt.Errorf("%w: handbrake_force=%v", ErrNotDrivable, c.HandbrakeForce)
	}
	if c.MaxRecoveries < 1 {
		return fmt.Errorf("%w: max_recoveries=%d", ErrNotDrivable, c.MaxRecoveries)
	}
	return nil
}
