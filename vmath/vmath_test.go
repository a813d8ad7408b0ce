package vmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(5, -1, 1))
	assert.Equal(t, -1.0, Clamp(-5, -1, 1))
	assert.Equal(t, 0.5, Clamp(0.5, -1, 1))
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(3))
	assert.Equal(t, 1.0, ClampMin(0.3, 1))
	assert.Equal(t, 4.0, ClampMin(4, 1))
}

func TestMoveToward(t *testing.T) {
	assert.Equal(t, 0.5, MoveToward(0, 2, 0.5))
	assert.Equal(t, 2.0, MoveToward(1.8, 2, 0.5))
	assert.Equal(t, -0.5, MoveToward(0, -2, 0.5))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1e300))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(-1)))
	assert.False(t, V3Finite(mgl64.Vec3{0, math.Inf(1), 0}))
	assert.False(t, QuatFinite(mgl64.Quat{W: math.NaN()}))
}

func TestV3SafeNormalize(t *testing.T) {
	assert.Equal(t, mgl64.Vec3{}, V3SafeNormalize(mgl64.Vec3{}))
	n := V3SafeNormalize(mgl64.Vec3{3, 0, 4})
	assert.InDelta(t, 1, n.Len(), 1e-12)
	assert.InDelta(t, 0.6, n.X(), 1e-12)
}

func TestV3ClampMagnitude(t *testing.T) {
	v := V3ClampMagnitude(mgl64.Vec3{3, 0, 4}, 1)
	assert.InDelta(t, 1, v.Len(), 1e-12)
	assert.Equal(t, mgl64.Vec3{0.3, 0, 0.4}, V3ClampMagnitude(mgl64.Vec3{0.3, 0, 0.4}, 1))
}

func TestSignedAngle(t *testing.T) {
	tests := []struct {
		name string
		a, b mgl64.Vec3
		want float64
	}{
		{"toward left is positive", LocalForward, mgl64.Vec3{1, 0, 0}, math.Pi / 2},
		{"toward right is negative", LocalForward, LocalRight, -math.Pi / 2},
		{"same direction", LocalForward, LocalForward.Mul(3), 0},
		{"degenerate", mgl64.Vec3{}, LocalForward, 0},
		{"reversed", LocalForward, LocalForward.Mul(-1), math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SignedAngle(tt.a, tt.b, LocalUp), 1e-12)
		})
	}
}

func TestTransformAxes(t *testing.T) {
	id := IdentityTransform()
	assert.Equal(t, LocalForward, id.Forward())
	assert.Equal(t, LocalUp, id.Up())
	assert.True(t, id.Finite())

	// A quarter turn left about up carries forward onto +X
	tr := Transform{
		Position:    mgl64.Vec3{1, 2, 3},
		Orientation: mgl64.QuatRotate(math.Pi/2, LocalUp),
	}
	f := tr.Forward()
	assert.InDelta(t, 1, f.X(), 1e-12)
	assert.InDelta(t, 0, f.Z(), 1e-12)

	r := tr.Right()
	assert.InDelta(t, 1, r.Z(), 1e-12)

	p := tr.Point(LocalForward)
	assert.InDelta(t, 2, p.X(), 1e-12)
	assert.InDelta(t, 2, p.Y(), 1e-12)
	assert.InDelta(t, 3, p.Z(), 1e-12)

	tr.Position[0] = math.NaN()
	assert.False(t, tr.Finite())
}
