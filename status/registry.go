// Package status is the process-wide metrics facade read by the HUD and telemetry
package status

import (
	"strings"
	"sync/atomic"
)

// Per-vehicle metric names, keyed as "<vehicle>.<metric>"
const (
	MetricSpeed       = "speed"
	MetricSteering    = "steering"
	MetricAirTime     = "air_time"
	MetricEngineForce = "engine_force"
	MetricGrounded    = "grounded"
	MetricShifts      = "shifts"
	MetricRecoveries  = "recoveries"
	MetricGear        = "gear"
	MetricAirborne    = "airborne"
)

// Engine-wide metric names
const (
	MetricSteps     = "engine.steps"
	MetricVehicles  = "engine.vehicles"
	MetricDropped   = "engine.dropped_steps"
	MetricPaused    = "engine.paused"
	MetricTelemetry = "engine.telemetry_samples"
)

// Key joins a vehicle name and metric name
func Key(vehicle, metric string) string {
	return vehicle + "." + metric
}

// Registry is the central metrics facade
// Vehicles cache pointers at construction; step hooks write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Forget drops every metric registered under a vehicle name
func (r *Registry) Forget(vehicle string) int {
	prefix := vehicle + "."
	return r.Bools.DeletePrefix(prefix) + r.Ints.DeletePrefix(prefix) +
		r.Floats.DeletePrefix(prefix) + r.Strings.DeletePrefix(prefix)
}

// Line renders "<metric>=<value>" pairs for one vehicle in key order, for the HUD
func (r *Registry) Line(vehicle string) string {
	prefix := vehicle + "."
	var b strings.Builder
	emit := func(k, v string) {
		if !strings.HasPrefix(k, prefix) {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimPrefix(k, prefix))
		b.WriteByte('=')
		b.WriteString(v)
	}
	r.Strings.Range(func(k string, p *AtomicString) { emit(k, p.Load()) })
	r.Floats.Range(func(k string, p *AtomicFloat) { emit(k, formatFloat(p.Get())) })
	r.Ints.Range(func(k string, p *atomic.Int64) { emit(k, itoa(p.Load())) })
	r.Bools.Range(func(k string, p *atomic.Bool) {
		if p.Load() {
			emit(k, "yes")
		} else {
			emit(k, "no")
		}
	})
	return b.String()
}
