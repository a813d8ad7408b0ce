package steering

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/raycar/vmath"
)

// SpeedFactor is clamp(speed × gain, 1, ∞); authority divides by it
func (c Config) SpeedFactor(speed float64) float64 {
	return vmath.ClampMin(speed*c.SpeedFactorGain, 1)
}

// Target returns the steering target for the held direction
// Positive steers left. Each side takes the stronger of the speed-limited lock and the
// drift correction in that direction, then re-clamps to the steering range. No input centers
func (c Config) Target(left, right bool, speed, drift float64) float64 {
	authority := c.MaxSteer / c.SpeedFactor(speed)
	var steer float64
	switch {
	case right && !left:
		steer = math.Min(-authority, -drift)
	case left && !right:
		steer = math.Max(authority, -drift)
	default:
		return 0
	}
	return vmath.Clamp(steer, -c.MaxSteer, c.MaxSteer)
}

// DriftAngle is the signed angle from the horizontal velocity direction to the forward axis
// around up; zero when the chassis is not moving across the ground plane
func DriftAngle(velocity, forward, up mgl64.Vec3) float64 {
	planar := vmath.V3Reject(velocity, up)
	if planar.Len() < driftMinSpeed {
		return 0
	}
	return vmath.SignedAngle(planar, forward, up)
}

// driftMinSpeed filters direction noise from resting contact jitter
const driftMinSpeed = 0.1
