package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/raycar/suspension"
)

func wheelParams() suspension.Params {
	return suspension.Params{
		Stiffness:          20,
		RestLength:         0.35,
		MaxTravel:          0.3,
		Radius:             0.25,
		FrictionSlip:       1.2,
		DampingCompression: 4.4,
		DampingRelaxation:  2.3,
		RollInfluence:      0.1,
		MaxForce:           1e5,
	}
}

func newTestVehicle(t *testing.T, y float64) (*RaycastVehicle, *Body) {
	t.Helper()
	chassis := NewBox(800, mgl64.Vec3{0.9, 0.2, 2}, 0.5, 0)
	chassis.SetPosition(mgl64.Vec3{0, y, 0})

	v := NewRaycastVehicle(chassis, 4)
	for _, a := range []mgl64.Vec3{{0.8, 0, 1.2}, {-0.8, 0, 1.2}, {0.8, 0, -1.2}, {-0.8, 0, -1.2}} {
		_, err := v.AddWheel(suspension.Descriptor{Anchor: a, Params: wheelParams()})
		require.NoError(t, err)
	}
	return v, chassis
}

func TestRaycastVehicleSettles(t *testing.T) {
	v, chassis := newTestVehicle(t, 0.6)
	w := NewWorld(-9.81, FlatGround{})
	require.NoError(t, v.AddToWorld(w))

	for range 600 {
		w.Step(1.0 / 60)
	}

	assert.Equal(t, 4, v.NumWheelsOnGround())
	want := 9.81 / (4 * 20)
	for i := range v.NumWheels() {
		info := v.Wheel(i)
		assert.True(t, info.Grounded)
		assert.False(t, info.Sliding)
		assert.InDelta(t, want, info.Compression, 0.005)
	}
	// contact distance is rest - compression + radius below the anchors
	assert.InDelta(t, 0.35-want+0.25, chassis.Position().Y(), 0.005)
	assert.InDelta(t, 0, chassis.Velocity().Len(), 0.01)
}

func TestRaycastVehicleAirborne(t *testing.T) {
	v, chassis := newTestVehicle(t, 5)
	w := NewWorld(-9.81, NoGround{})
	require.NoError(t, v.AddToWorld(w))
	v.ApplyEngineForce(1000, 0)

	w.Step(1.0 / 60)
	assert.Zero(t, v.NumWheelsOnGround())
	for i := range v.NumWheels() {
		assert.False(t, v.Wheel(i).Grounded)
		assert.Zero(t, v.Wheel(i).SuspensionForce)
	}
	assert.InDelta(t, 0, chassis.Velocity().Z(), 1e-12, "drive force needs ground")
	assert.InDelta(t, -9.81/60, chassis.Velocity().Y(), 1e-12)
}

func TestRaycastVehicleLifecycle(t *testing.T) {
	v, chassis := newTestVehicle(t, 0.6)
	w := NewWorld(-9.81, FlatGround{})

	assert.ErrorIs(t, v.RemoveFromWorld(), ErrVehicleDetached)
	require.NoError(t, v.AddToWorld(w))
	assert.ErrorIs(t, v.AddToWorld(w), ErrVehicleAttached)
	assert.True(t, w.HasBody(chassis.ID()))
	assert.Equal(t, 1, w.HookCount())

	_, err := v.AddWheel(suspension.Descriptor{Params: wheelParams()})
	assert.ErrorIs(t, err, suspension.ErrSealed)

	require.NoError(t, v.RemoveFromWorld())
	assert.False(t, v.InWorld())
	assert.Zero(t, w.BodyCount())
	assert.Zero(t, w.HookCount())
}

func TestRaycastVehicleNoWheels(t *testing.T) {
	v := NewRaycastVehicle(NewBox(1, mgl64.Vec3{1, 1, 1}, 0.5, 0), 0)
	err := v.AddToWorld(NewWorld(-9.81, nil))
	assert.ErrorIs(t, err, suspension.ErrNoWheels)
}

func TestRaycastVehicleControlIndexBounds(t *testing.T) {
	v, _ := newTestVehicle(t, 0.6)
	v.SetSteeringValue(0.3, 0)
	v.SetSteeringValue(0.3, 9)
	v.ApplyEngineForce(10, -1)
	v.SetBrake(5, 3)

	assert.Equal(t, 0.3, v.Wheel(0).Steering)
	assert.Equal(t, 5.0, v.Wheel(3).Brake)
	assert.Equal(t, -1, v.Wheel(9).Index)
}

func TestRaycastVehicleDrivesForward(t *testing.T) {
	v, chassis := newTestVehicle(t, 0.6)
	w := NewWorld(-9.81, FlatGround{})
	require.NoError(t, v.AddToWorld(w))

	for range 60 {
		w.Step(1.0 / 60)
	}
	for i := range v.NumWheels() {
		v.ApplyEngineForce(1000, i)
	}
	for range 60 {
		w.Step(1.0 / 60)
	}
	assert.Greater(t, chassis.Velocity().Z(), 3.0)
	assert.InDelta(t, 0, chassis.Velocity().X(), 0.05)

	wt := v.UpdateWheelTransform(0)
	assert.True(t, wt.Finite())
	assert.NotZero(t, v.Wheel(0).Rotation)
}
