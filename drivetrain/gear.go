// Package drivetrain implements an automatic gearbox and engine force law
package drivetrain

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lixenwraith/raycar/vmath"
)

var (
	ErrInvalidGearTable = errors.New("drivetrain: invalid gear table")
	ErrInvalidConfig    = errors.New("drivetrain: invalid config")
)

// Gear is a gear index; -1 reverse, 0 neutral, 1.. forward
type Gear int

const (
	GearReverse Gear = -1
	GearNeutral Gear = 0
	GearFirst   Gear = 1
)

func (g Gear) String() string {
	switch g {
	case GearReverse:
		return "R"
	case GearNeutral:
		return "N"
	default:
		return strconv.Itoa(int(g))
	}
}

// GearTable holds each gear's top speed in m/s, forward positive, ordered
// reverse, neutral, 1st, 2nd, ... Each forward gear spans from the previous
// gear's top speed to its own
type GearTable []float64

// Validate requires reverse < 0 = neutral < 1st < 2nd < ...
func (t GearTable) Validate() error {
	if len(t) < 3 {
		return fmt.Errorf("%w: need reverse, neutral and at least one forward gear, got %d entries", ErrInvalidGearTable, len(t))
	}
	for i, v := range t {
		if !vmath.IsFinite(v) {
			return fmt.Errorf("%w: entry %d not finite", ErrInvalidGearTable, i)
		}
	}
	if t[0] >= 0 {
		return fmt.Errorf("%w: reverse top speed %v must be negative", ErrInvalidGearTable, t[0])
	}
	if t[1] != 0 {
		return fmt.Errorf("%w: neutral entry %v must be 0", ErrInvalidGearTable, t[1])
	}
	for i := 2; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return fmt.Errorf("%w: gear %d top speed %v not above previous %v", ErrInvalidGearTable, i-1, t[i], t[i-1])
		}
	}
	return nil
}

// Top returns the highest forward gear
func (t GearTable) Top() Gear {
	return Gear(len(t) - 2)
}

// MaxSpeed returns the top speed of g
func (t GearTable) MaxSpeed(g Gear) float64 {
	return t[int(g)+1]
}

// RawPowerFactor is the unclamped fraction of g's speed band still ahead
// 1 at the bottom of the band, 0 at its top; reverse measures toward its negative top
func (t GearTable) RawPowerFactor(g Gear, speed float64) float64 {
	switch {
	case g == GearReverse:
		top := t.MaxSpeed(GearReverse)
		return (speed - top) / -top
	case g >= GearFirst:
		top := t.MaxSpeed(g)
		bottom := t.MaxSpeed(g - 1)
		return (top - speed) / (top - bottom)
	default:
		return 0
	}
}

// PowerFactor is RawPowerFactor clamped to [0, 1]
func (t GearTable) PowerFactor(g Gear, speed float64) float64 {
	return vmath.Clamp01(t.RawPowerFactor(g, speed))
}
