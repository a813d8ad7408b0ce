// Package suspension models raycast wheels: a fixed wheel set and the
// ground-probe spring/damper that supports the chassis.
package suspension

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/raycar/vmath"
)

var (
	ErrNoWheels     = errors.New("suspension: no wheels")
	ErrInvalidWheel = errors.New("suspension: invalid wheel descriptor")
	ErrSealed       = errors.New("suspension: wheel set is sealed")
)

// Handle identifies a wheel; stable for the vehicle's lifetime
type Handle int

// Params are the per-wheel suspension and tire constants
// Stiffness and damping are per unit chassis mass
type Params struct {
	Stiffness          float64 `mapstructure:"stiffness" yaml:"stiffness"`
	RestLength         float64 `mapstructure:"rest_length" yaml:"rest_length"`
	MaxTravel          float64 `mapstructure:"max_travel" yaml:"max_travel"`
	Radius             float64 `mapstructure:"radius" yaml:"radius"`
	FrictionSlip       float64 `mapstructure:"friction_slip" yaml:"friction_slip"`
	DampingCompression float64 `mapstructure:"damping_compression" yaml:"damping_compression"`
	DampingRelaxation  float64 `mapstructure:"damping_relaxation" yaml:"damping_relaxation"`
	RollInfluence      float64 `mapstructure:"roll_influence" yaml:"roll_influence"`
	MaxForce           float64 `mapstructure:"max_force" yaml:"max_force"`
}

// Descriptor is the construction-time description of one wheel
type Descriptor struct {
	Anchor    mgl64.Vec3 `mapstructure:"anchor" yaml:"anchor,flow"` // chassis-local
	Params    `mapstructure:",squash" yaml:",inline"`
	Steered   bool `mapstructure:"steered" yaml:"steered"`
	Driven    bool `mapstructure:"driven" yaml:"driven"`
	Handbrake bool `mapstructure:"handbrake" yaml:"handbrake"`
}

// ProbeLength is the maximum ray distance from anchor that still counts as contact
func (d Descriptor) ProbeLength() float64 {
	return d.RestLength + d.MaxTravel + d.Radius
}

// Validate rejects descriptors that would make the vehicle undrivable
func (d Descriptor) Validate() error {
	if !vmath.V3Finite(d.Anchor) {
		return fmt.Errorf("%w: anchor %v not finite", ErrInvalidWheel, d.Anchor)
	}
	fields := []struct {
		name string
		v    float64
		min  float64
		open bool // v must be strictly greater than min
	}{
		{"stiffness", d.Stiffness, 0, true},
		{"rest_length", d.RestLength, 0, true},
		{"max_travel", d.MaxTravel, 0, false},
		{"radius", d.Radius, 0, true},
		{"friction_slip", d.FrictionSlip, 0, false},
		{"damping_compression", d.DampingCompression, 0, false},
		{"damping_relaxation", d.DampingRelaxation, 0, false},
		{"roll_influence", d.RollInfluence, 0, false},
		{"max_force", d.MaxForce, 0, true},
	}
	for _, f := range fields {
		if !vmath.IsFinite(f.v) || f.v < f.min || (f.open && f.v == f.min) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidWheel, f.name, f.v)
		}
	}
	if d.RollInfluence > 1 {
		return fmt.Errorf("%w: roll_influence=%v exceeds 1", ErrInvalidWheel, d.RollInfluence)
	}
	return nil
}

// Wheel is a registered descriptor plus its per-tick contact state
type Wheel struct {
	Index Handle
	Descriptor

	Grounded         bool
	Compression      float64 // rest length minus measured length, in [0, MaxTravel]
	SuspensionLength float64 // anchor to hub along chassis down
	SuspensionForce  float64 // magnitude along contact normal, N
	ContactPoint     mgl64.Vec3
	ContactNormal    mgl64.Vec3
}

// resetContact marks the wheel airborne at full extension
func (w *Wheel) resetContact() {
	w.Grounded = false
	w.Compression = 0
	w.SuspensionLength = w.RestLength + w.MaxTravel
	w.SuspensionForce = 0
	w.ContactPoint = mgl64.Vec3{}
	w.ContactNormal = mgl64.Vec3{}
}

// WheelSet is the fixed-count wheel collection of one vehicle
// Wheels are appended until Seal; afterwards the count never changes
type WheelSet struct {
	wheels []Wheel
	sealed bool
}

// NewWheelSet creates an empty, unsealed set with room for capacity wheels
func NewWheelSet(capacity int) *WheelSet {
	return &WheelSet{wheels: make([]Wheel, 0, capacity)}
}

// Add validates and appends a descriptor, returning its stable handle
func (s *WheelSet) Add(d Descriptor) (Handle, error) {
	if s.sealed {
		return -1, ErrSealed
	}
	if err := d.Validate(); err != nil {
		return -1, err
	}
	h := Handle(len(s.wheels))
	w := Wheel{Index: h, Descriptor: d}
	w.resetContact()
	s.wheels = append(s.wheels, w)
	return h, nil
}

// Seal freezes the wheel count; a set without wheels cannot be sealed
func (s *WheelSet) Seal() error {
	if len(s.wheels) == 0 {
		return ErrNoWheels
	}
	s.sealed = true
	return nil
}

func (s *WheelSet) Sealed() bool { return s.sealed }
func (s *WheelSet) Len() int     { return len(s.wheels) }

// At returns the wheel for h; the pointer stays valid for the set's lifetime once sealed
func (s *WheelSet) At(h Handle) *Wheel {
	if h < 0 || int(h) >= len(s.wheels) {
		return nil
	}
	return &s.wheels[h]
}

// All returns the backing slice; callers must not append
func (s *WheelSet) All() []Wheel {
	return s.wheels
}

// HubLocal returns the wheel center in chassis-local space
func (s *WheelSet) HubLocal(h Handle) mgl64.Vec3 {
	w := &s.wheels[h]
	return w.Anchor.Add(vmath.LocalDown.Mul(w.SuspensionLength))
}

// HubWorld returns the wheel center in world space for the given chassis transform
func (s *WheelSet) HubWorld(h Handle, chassis vmath.Transform) mgl64.Vec3 {
	return chassis.Point(s.HubLocal(h))
}
