package physics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlipForceNoLoad(t *testing.T) {
	long, lat, sliding := SlipForce(SlipInput{EngineForce: 1000, NormalForce: 0, FrictionSlip: 1, Dt: 0.01, MassShare: 100})
	assert.Zero(t, long)
	assert.Zero(t, lat)
	assert.False(t, sliding)
}

func TestSlipForceDriveFromRest(t *testing.T) {
	long, lat, sliding := SlipForce(SlipInput{
		EngineForce:  500,
		MassShare:    200,
		NormalForce:  2000,
		FrictionSlip: 1.2,
		Dt:           1.0 / 60,
	})
	assert.Equal(t, 500.0, long, "resistance never acts on a stationary wheel")
	assert.Zero(t, lat)
	assert.False(t, sliding)
}

func TestSlipForceBrakeNeverReverses(t *testing.T) {
	dt := 1.0 / 60
	long, _, _ := SlipForce(SlipInput{
		BrakeForce:   1e6,
		VLong:        0.1,
		MassShare:    200,
		NormalForce:  1e7,
		FrictionSlip: 1,
		Dt:           dt,
	})
	assert.InDelta(t, -0.1*200/dt, long, 1e-9)
}

func TestSlipForceFrictionCircle(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for range 1000 {
		in := SlipInput{
			EngineForce:  r.Float64()*4000 - 2000,
			BrakeForce:   r.Float64() * 1000,
			VLong:        r.Float64()*40 - 20,
			VLat:         r.Float64()*10 - 5,
			MassShare:    r.Float64() * 400,
			NormalForce:  r.Float64() * 3000,
			FrictionSlip: r.Float64() * 2,
			Dt:           1.0 / 60,
		}
		long, lat, sliding := SlipForce(in)
		limit := in.FrictionSlip * in.NormalForce
		total := math.Hypot(long, lat)
		assert.LessOrEqual(t, total, limit+1e-6)
		if sliding {
			assert.InDelta(t, limit, total, 1e-6)
		}
	}
}

func TestSlipForceLateralOpposesSlip(t *testing.T) {
	_, lat, _ := SlipForce(SlipInput{VLat: 1, MassShare: 100, NormalForce: 1e6, FrictionSlip: 1, Dt: 0.1})
	assert.InDelta(t, -1000, lat, 1e-9)
}
