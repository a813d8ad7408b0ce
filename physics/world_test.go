package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldHookOrder(t *testing.T) {
	w := NewWorld(-9.81, NoGround{})
	b := NewBox(1, mgl64.Vec3{0.5, 0.5, 0.5}, 0.5, 0)
	w.AddBody(b)

	var trace []string
	w.AddPreStep(func(float64) {
		trace = append(trace, "pre")
		assert.Zero(t, b.Velocity().Y(), "pre hooks run before integration")
	})
	w.AddPostStep(func(float64) {
		trace = append(trace, "post")
		assert.Less(t, b.Velocity().Y(), 0.0, "post hooks see integrated state")
	})

	w.Step(1.0 / 60)
	assert.Equal(t, []string{"pre", "post"}, trace)
	assert.Equal(t, uint64(1), w.Steps())
}

func TestWorldRemoveHookMidStep(t *testing.T) {
	w := NewWorld(0, nil)

	calls := 0
	var second HookID
	w.AddPreStep(func(float64) { w.RemoveHook(second) })
	second = w.AddPreStep(func(float64) { calls++ })

	w.Step(0.01)
	w.Step(0.01)
	assert.Zero(t, calls)
	assert.Equal(t, 1, w.HookCount())
	assert.False(t, w.RemoveHook(second))
}

func TestWorldHookAddedMidStepRunsNextStep(t *testing.T) {
	w := NewWorld(0, nil)

	calls := 0
	added := false
	w.AddPreStep(func(float64) {
		if !added {
			added = true
			w.AddPreStep(func(float64) { calls++ })
		}
	})

	w.Step(0.01)
	assert.Zero(t, calls)
	w.Step(0.01)
	assert.Equal(t, 1, calls)
}

func TestWorldBodies(t *testing.T) {
	w := NewWorld(-9.81, nil)
	a := NewBox(1, mgl64.Vec3{1, 1, 1}, 0.5, 0)
	b := NewBox(1, mgl64.Vec3{1, 1, 1}, 0.5, 0)

	ida := w.AddBody(a)
	idb := w.AddBody(b)
	assert.NotEqual(t, ida, idb)
	assert.Equal(t, 2, w.BodyCount())

	require.NoError(t, w.RemoveBody(ida))
	assert.False(t, w.HasBody(ida))
	assert.True(t, w.HasBody(idb))
	assert.ErrorIs(t, w.RemoveBody(ida), ErrUnknownBody)

	w.Step(0.5)
	assert.Zero(t, a.Velocity().Y(), "removed bodies are not integrated")
	assert.InDelta(t, -9.81*0.5, b.Velocity().Y(), 1e-12)
}

func TestBodyFreeFall(t *testing.T) {
	w := NewWorld(-10, nil)
	b := NewBox(2, mgl64.Vec3{1, 1, 1}, 0.5, 0)
	b.SetPosition(mgl64.Vec3{0, 100, 0})
	w.AddBody(b)

	for range 10 {
		w.Step(0.1)
	}
	assert.InDelta(t, -10, b.Velocity().Y(), 1e-9)
	// semi-implicit Euler: sum of v_i*dt for v_i = -1..-10
	assert.InDelta(t, 100-5.5, b.Position().Y(), 1e-9)
}

func TestBodyOffCenterForceSpins(t *testing.T) {
	b := NewBox(1, mgl64.Vec3{1, 1, 1}, 0.5, 0)
	b.ApplyForce(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0})
	b.integrateVelocity(1, mgl64.Vec3{})

	assert.InDelta(t, 1, b.Velocity().Z(), 1e-12)
	assert.Less(t, b.AngularVelocity().Y(), 0.0)

	b.clearForces()
	w := b.AngularVelocity()
	b.integrateVelocity(1, mgl64.Vec3{})
	assert.Equal(t, w, b.AngularVelocity())
}

func TestGroundContactStopsFall(t *testing.T) {
	w := NewWorld(-9.81, FlatGround{})
	b := NewBox(10, mgl64.Vec3{1, 0.5, 1}, 0.8, 0)
	b.SetPosition(mgl64.Vec3{0, 2, 0})
	w.AddBody(b)

	for range 600 {
		w.Step(1.0 / 60)
	}
	assert.InDelta(t, 0.5, b.Position().Y(), 0.02)
	assert.InDelta(t, 0, b.Velocity().Len(), 0.2)
}

func TestFlatGroundRaycast(t *testing.T) {
	g := FlatGround{Height: 1}
	down := mgl64.Vec3{0, -1, 0}

	hit, ok := g.Raycast(mgl64.Vec3{3, 4, 5}, down, 10)
	require.True(t, ok)
	assert.InDelta(t, 3, hit.Distance, 1e-12)
	assert.Equal(t, mgl64.Vec3{3, 1, 5}, hit.Point)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, hit.Normal)

	_, ok = g.Raycast(mgl64.Vec3{0, 4, 0}, down, 2.9)
	assert.False(t, ok, "beyond max distance")

	hit, ok = g.Raycast(mgl64.Vec3{0, 4, 0}, down, 3)
	assert.True(t, ok, "max distance is inclusive")
	assert.InDelta(t, 3, hit.Distance, 1e-12)

	_, ok = g.Raycast(mgl64.Vec3{0, 0.5, 0}, down, 10)
	assert.False(t, ok, "origin below the plane")

	_, ok = g.Raycast(mgl64.Vec3{0, 4, 0}, mgl64.Vec3{0, 1, 0}, 10)
	assert.False(t, ok, "pointing away")

	_, ok = NoGround{}.Raycast(mgl64.Vec3{0, 4, 0}, down, 100)
	assert.False(t, ok)
}
