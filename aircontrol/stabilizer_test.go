package aircontrol

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/raycar/vmath"
)

type fakeBody struct {
	tr vmath.Transform
	w  mgl64.Vec3
}

func (b *fakeBody) Transform() vmath.Transform      { return b.tr }
func (b *fakeBody) AngularVelocity() mgl64.Vec3     { return b.w }
func (b *fakeBody) SetAngularVelocity(w mgl64.Vec3) { b.w = w }

func upright() *fakeBody {
	return &fakeBody{tr: vmath.IdentityTransform()}
}

func testConfig() Config {
	return Config{RampDuration: 2, MaxSpin: 2, SpinAcceleration: 0.15, FlipGain: 3}
}

func newStabilizer(t *testing.T) *Stabilizer {
	t.Helper()
	s, err := New(testConfig())
	require.NoError(t, err)
	return s
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, testConfig().Validate())
	c := testConfig()
	c.RampDuration = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
	c = testConfig()
	c.MaxSpin = math.Inf(1)
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestGroundedResetsSameTick(t *testing.T) {
	s := newStabilizer(t)
	b := upright()

	for range 30 {
		s.Step(b, 0, Input{}, 5, 1.0/60)
	}
	assert.InDelta(t, 0.5, s.AirTime(), 1e-9)

	s.Step(b, 1, Input{Right: true}, 5, 1.0/60)
	assert.Zero(t, s.AirTime())
	assert.Zero(t, s.LastIncrement())
	assert.Equal(t, mgl64.Vec3{}, s.LastApplied())
	assert.Equal(t, mgl64.Vec3{}, b.w)
}

func TestNoInputNoCorrection(t *testing.T) {
	s := newStabilizer(t)
	b := upright()
	b.w = mgl64.Vec3{0.1, 0.2, 0.3}

	for range 60 {
		s.Step(b, 0, Input{}, 5, 1.0/60)
	}
	assert.Equal(t, mgl64.Vec3{0.1, 0.2, 0.3}, b.w)
	assert.Greater(t, s.LastIncrement(), 0.0)
}

func TestRampScalesIncrement(t *testing.T) {
	dt := 0.1
	half := newStabilizer(t)
	for range 10 {
		half.Step(upright(), 0, Input{Right: true}, 5, dt)
	}
	full := newStabilizer(t)
	for range 20 {
		full.Step(upright(), 0, Input{Right: true}, 5, dt)
	}

	// Upright at speed: no flip contribution
	assert.Zero(t, half.FlipInfluence())
	assert.InDelta(t, 0.5, half.SpinInfluence(), 1e-9)
	assert.InDelta(t, 1, full.SpinInfluence(), 1e-9)
	assert.Less(t, half.LastIncrement(), full.LastIncrement())
	assert.InDelta(t, 0.15, full.LastIncrement(), 1e-9)
}

func TestRollAndPitchDirections(t *testing.T) {
	s := newStabilizer(t)
	b := upright()
	// Give the ramp a full second so the increment is non-zero at speed
	for range 60 {
		s.Step(b, 0, Input{}, 5, 1.0/60)
	}

	s.Step(b, 0, Input{Right: true, Throttle: true}, 5, 1.0/60)
	inc := s.LastIncrement()
	require.Greater(t, inc, 0.0)

	// right input spins about +forward, throttle about -right (= +X)
	assert.InDelta(t, inc, b.w.Z(), 1e-12)
	assert.InDelta(t, inc, b.w.X(), 1e-12)
	assert.Equal(t, b.w, s.LastApplied())

	b.w = mgl64.Vec3{}
	s.Step(b, 0, Input{Left: true, Reverse: true}, 5, 1.0/60)
	assert.Less(t, b.w.Z(), 0.0)
	assert.Less(t, b.w.X(), 0.0)

	b.w = mgl64.Vec3{}
	s.Step(b, 0, Input{Left: true, Right: true, Throttle: true, Reverse: true}, 5, 1.0/60)
	assert.Equal(t, mgl64.Vec3{}, b.w, "opposed inputs cancel")
}

func TestSpinCapNeverExceeded(t *testing.T) {
	s := newStabilizer(t)
	b := &fakeBody{tr: vmath.Transform{Orientation: mgl64.QuatRotate(math.Pi, vmath.LocalForward)}}

	// Upside down and slow: full flip influence every tick
	for range 600 {
		s.Step(b, 0, Input{Right: true, Throttle: true}, 0, 1.0/60)
		tr := b.tr
		assert.LessOrEqual(t, b.w.Dot(tr.Forward()), 2+1e-9)
		assert.LessOrEqual(t, b.w.Dot(tr.Right().Mul(-1)), 2+1e-9)
	}
	assert.InDelta(t, 2, b.w.Dot(b.tr.Forward()), 1e-9)
	assert.InDelta(t, 3, s.FlipInfluence(), 1e-9)
}

func TestSpinAboveCapIsNotBraked(t *testing.T) {
	s := newStabilizer(t)
	b := upright()
	b.w = mgl64.Vec3{0, 0, 5}

	s.Step(b, 0, Input{Right: true}, 5, 1.0/60)
	require.Greater(t, s.LastIncrement(), 0.0)
	assert.Equal(t, mgl64.Vec3{0, 0, 5}, b.w)
	assert.Equal(t, mgl64.Vec3{}, s.LastApplied())
}

func TestFlipInfluenceOrientation(t *testing.T) {
	s := newStabilizer(t)
	s.Step(upright(), 0, Input{}, 0, 0.01)
	assert.InDelta(t, 0, s.FlipInfluence(), 1e-12)

	side := &fakeBody{tr: vmath.Transform{Orientation: mgl64.QuatRotate(math.Pi/2, vmath.LocalForward)}}
	s.Step(side, 0, Input{}, 0, 0.01)
	assert.InDelta(t, 1.5, s.FlipInfluence(), 1e-9)

	s.Step(side, 0, Input{}, 1, 0.01)
	assert.InDelta(t, 0, s.FlipInfluence(), 1e-12, "flip help fades out by 1 m/s")
}

func TestReset(t *testing.T) {
	s := newStabilizer(t)
	s.Step(upright(), 0, Input{Right: true}, 0, 0.5)
	s.Reset()
	assert.Zero(t, s.AirTime())
	assert.Zero(t, s.LastIncrement())
}
