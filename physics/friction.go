package physics

import (
	"math"

	"github.com/lixenwraith/raycar/vmath"
)

// Tire model: linear slip clamp
//
// Longitudinal force is the commanded engine force minus brake and rolling resistance, the
// latter two opposing wheel-plane speed and never exceeding what stops the wheel's mass share
// within one step. Lateral force cancels lateral slip of the mass share within one step,
// scaled by SideFrictionStiffness. The resultant is clamped to the friction circle
// FrictionSlip × normal force; a clamped wheel is sliding

const (
	// SideFrictionStiffness scales the lateral slip-cancelling force
	SideFrictionStiffness = 1.0

	// RollingResistance is the rolling drag coefficient against normal force
	RollingResistance = 0.015
)

// SlipInput is the per-wheel state the friction model consumes
type SlipInput struct {
	EngineForce  float64 // along wheel forward, N
	BrakeForce   float64 // magnitude, N
	VLong        float64 // contact velocity along wheel forward, m/s
	VLat         float64 // contact velocity along wheel side, m/s
	MassShare    float64 // chassis mass / grounded wheels, kg
	NormalForce  float64 // suspension force, N
	FrictionSlip float64
	Dt           float64
}

// SlipForce returns longitudinal and lateral tire forces and whether the tire slides
func SlipForce(in SlipInput) (long, lat float64, sliding bool) {
	if in.NormalForce <= 0 || in.Dt <= 0 {
		return 0, 0, false
	}

	stopForce := math.Abs(in.VLong) * in.MassShare / in.Dt

	long = in.EngineForce
	resist := math.Min(in.BrakeForce+RollingResistance*in.NormalForce, stopForce)
	long -= vmath.Sign(in.VLong) * resist

	lat = -in.VLat * in.MassShare / in.Dt * SideFrictionStiffness

	limit := in.FrictionSlip * in.NormalForce
	total := math.Hypot(long, lat)
	if total > limit {
		scale := 0.0
		if total > 0 {
			scale = limit / total
		}
		long *= scale
		lat *= scale
		sliding = true
	}
	return long, lat, sliding
}
