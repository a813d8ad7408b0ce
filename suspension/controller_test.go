package suspension

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/raycar/vmath"
)

type appliedForce struct {
	force, point mgl64.Vec3
}

type fakeChassis struct {
	pos    mgl64.Vec3
	mass   float64
	vel    mgl64.Vec3
	forces []appliedForce
}

func (c *fakeChassis) Transform() vmath.Transform {
	return vmath.Transform{Position: c.pos, Orientation: mgl64.QuatIdent()}
}
func (c *fakeChassis) Mass() float64                       { return c.mass }
func (c *fakeChassis) PointVelocity(mgl64.Vec3) mgl64.Vec3 { return c.vel }
func (c *fakeChassis) ApplyForce(f, p mgl64.Vec3) {
	c.forces = append(c.forces, appliedForce{f, p})
}

// plane is a horizontal ground at y=0 hit only from above
type plane struct{}

func (plane) Raycast(from, dir mgl64.Vec3, maxDist float64) (vmath.RayHit, bool) {
	if from.Y() < 0 || dir.Y() >= 0 {
		return vmath.RayHit{}, false
	}
	d := from.Y() / -dir.Y()
	if d > maxDist {
		return vmath.RayHit{}, false
	}
	return vmath.RayHit{Point: from.Add(dir.Mul(d)), Normal: mgl64.Vec3{0, 1, 0}, Distance: d}, true
}

type nothing struct{}

func (nothing) Raycast(mgl64.Vec3, mgl64.Vec3, float64) (vmath.RayHit, bool) {
	return vmath.RayHit{}, false
}

func testParams() Params {
	return Params{
		Stiffness:          20,
		RestLength:         0.35,
		MaxTravel:          0.3,
		Radius:             0.25,
		FrictionSlip:       1.2,
		DampingCompression: 4.4,
		DampingRelaxation:  2.3,
		RollInfluence:      1,
		MaxForce:           1e6,
	}
}

func oneWheel(t *testing.T, p Params) *Controller {
	t.Helper()
	c := NewController(1)
	_, err := c.RegisterWheel(Descriptor{Params: p})
	require.NoError(t, err)
	require.NoError(t, c.Seal())
	return c
}

func TestStepUnsealedDoesNothing(t *testing.T) {
	c := NewController(1)
	_, err := c.RegisterWheel(Descriptor{Params: testParams()})
	require.NoError(t, err)

	ch := &fakeChassis{pos: mgl64.Vec3{0, 0.5, 0}, mass: 100}
	assert.Equal(t, 0, c.Step(ch, plane{}))
	assert.Empty(t, ch.forces)
}

func TestStepNoGroundMarksAirborne(t *testing.T) {
	c := oneWheel(t, testParams())
	ch := &fakeChassis{pos: mgl64.Vec3{0, 0.5, 0}, mass: 100}

	assert.Equal(t, 0, c.Step(ch, nothing{}))
	w := c.Wheels().At(0)
	assert.False(t, w.Grounded)
	assert.Zero(t, w.SuspensionForce)
	assert.InDelta(t, 0.65, w.SuspensionLength, 1e-12)
	assert.Empty(t, ch.forces)
}

func TestStepOutOfRangeIsAirborne(t *testing.T) {
	c := oneWheel(t, testParams())
	// Probe reaches rest+travel+radius = 0.9 below the anchor
	ch := &fakeChassis{pos: mgl64.Vec3{0, 0.95, 0}, mass: 100}

	assert.Equal(t, 0, c.Step(ch, plane{}))
	assert.False(t, c.Wheels().At(0).Grounded)
}

func TestStepSpringForce(t *testing.T) {
	c := oneWheel(t, testParams())
	// hit at 0.5, length 0.25, compression 0.1
	ch := &fakeChassis{pos: mgl64.Vec3{0, 0.5, 0}, mass: 100}

	require.Equal(t, 1, c.Step(ch, plane{}))
	w := c.Wheels().At(0)
	assert.True(t, w.Grounded)
	assert.InDelta(t, 0.1, w.Compression, 1e-12)
	assert.InDelta(t, 20*0.1*100, w.SuspensionForce, 1e-9)

	require.Len(t, ch.forces, 1)
	assert.InDelta(t, w.SuspensionForce, ch.forces[0].force.Y(), 1e-9)
	assert.InDelta(t, 0, ch.forces[0].point.Y(), 1e-12, "full roll influence applies at the contact")
}

func TestStepCompressionClamped(t *testing.T) {
	c := oneWheel(t, testParams())
	// hit at 0.1, length -0.15, raw compression 0.5 > travel
	ch := &fakeChassis{pos: mgl64.Vec3{0, 0.1, 0}, mass: 100}

	require.Equal(t, 1, c.Step(ch, plane{}))
	w := c.Wheels().At(0)
	assert.InDelta(t, 0.3, w.Compression, 1e-12)
	assert.InDelta(t, 0.05, w.SuspensionLength, 1e-12)
}

func TestStepDampingDirection(t *testing.T) {
	p := testParams()
	pos := mgl64.Vec3{0, 0.5, 0}

	still := &fakeChassis{pos: pos, mass: 1}
	falling := &fakeChassis{pos: pos, mass: 1, vel: mgl64.Vec3{0, -1, 0}}
	rising := &fakeChassis{pos: pos, mass: 1, vel: mgl64.Vec3{0, 0.1, 0}}

	oneWheel(t, p).Step(still, plane{})
	oneWheel(t, p).Step(falling, plane{})
	oneWheel(t, p).Step(rising, plane{})

	base := still.forces[0].force.Y()
	assert.InDelta(t, base+p.DampingCompression, falling.forces[0].force.Y(), 1e-9)
	assert.InDelta(t, base-0.1*p.DampingRelaxation, rising.forces[0].force.Y(), 1e-9)
}

func TestStepForceNeverPulls(t *testing.T) {
	c := oneWheel(t, testParams())
	// Fast extension would make the raw force negative
	ch := &fakeChassis{pos: mgl64.Vec3{0, 0.5, 0}, mass: 1, vel: mgl64.Vec3{0, 10, 0}}

	require.Equal(t, 1, c.Step(ch, plane{}))
	assert.Zero(t, c.Wheels().At(0).SuspensionForce)
	assert.Empty(t, ch.forces)
}

func TestStepForceCapped(t *testing.T) {
	p := testParams()
	p.MaxForce = 50
	c := oneWheel(t, p)
	ch := &fakeChassis{pos: mgl64.Vec3{0, 0.5, 0}, mass: 100}

	c.Step(ch, plane{})
	assert.InDelta(t, 50, c.Wheels().At(0).SuspensionForce, 1e-12)
}

func TestRollPoint(t *testing.T) {
	center := mgl64.Vec3{0, 1, 0}
	up := mgl64.Vec3{0, 1, 0}
	contact := mgl64.Vec3{0.8, 0.2, 1.2}

	assert.Equal(t, contact, RollPoint(center, up, contact, 1))

	atCenter := RollPoint(center, up, contact, 0)
	assert.InDelta(t, 1, atCenter.Y(), 1e-12)
	assert.InDelta(t, 0.8, atCenter.X(), 1e-12)
	assert.InDelta(t, 1.2, atCenter.Z(), 1e-12)
}
