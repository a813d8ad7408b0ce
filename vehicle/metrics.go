package vehicle

import (
	"sync/atomic"

	"github.com/lixenwraith/raycar/drivetrain"
	"github.com/lixenwraith/raycar/status"
)

// metrics caches registry pointers at construction; post-step writes straight to the atomics
// A nil *metrics is valid and records nothing
type metrics struct {
	speed      *status.AtomicFloat
	steering   *status.AtomicFloat
	airTime    *status.AtomicFloat
	engine     *status.AtomicFloat
	grounded   *atomic.Int64
	shifts     *atomic.Int64
	recoveries *atomic.Int64
	gear       *status.AtomicString
	airborne   *atomic.Bool
}

func newMetrics(reg *status.Registry, name string) *metrics {
	if reg == nil {
		return nil
	}
	k := func(s string) string { return status.Key(name, s) }
	return &metrics{
		speed:      reg.Floats.Get(k(status.MetricSpeed)),
		steering:   reg.Floats.Get(k(status.MetricSteering)),
		airTime:    reg.Floats.Get(k(status.MetricAirTime)),
		engine:     reg.Floats.Get(k(status.MetricEngineForce)),
		grounded:   reg.Ints.Get(k(status.MetricGrounded)),
		shifts:     reg.Ints.Get(k(status.MetricShifts)),
		recoveries: reg.Ints.Get(k(status.MetricRecoveries)),
		gear:       reg.Strings.Get(k(status.MetricGear)),
		airborne:   reg.Bools.Get(k(status.MetricAirborne)),
	}
}

func (m *metrics) update(c *Controller, grounded int) {
	if m == nil {
		return
	}
	m.speed.Set(c.speed)
	m.steering.Set(c.steer.Current())
	m.airTime.Set(c.air.AirTime())
	m.engine.Set(c.drive.WheelForce())
	m.grounded.Store(int64(grounded))
	m.gear.Store(c.drive.Gear().String())
	m.airborne.Store(grounded == 0)
}

func (m *metrics) shift(drivetrain.Gear) {
	if m == nil {
		return
	}
	m.shifts.Add(1)
}

func (m *metrics) recovery() {
	if m == nil {
		return
	}
	m.recoveries.Add(1)
}
