// Package telemetry records per-step vehicle state to a memory ring or a SQL store
package telemetry

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("telemetry: recorder closed")

// Sample is one vehicle's state after one physics step
type Sample struct {
	ID          uint    `gorm:"primaryKey"`
	VehicleID   string  `gorm:"size:36;index:idx_vehicle_step,priority:1"`
	Step        uint64  `gorm:"index:idx_vehicle_step,priority:2"`
	SimTime     float64 // seconds since the engine started stepping
	X, Y, Z     float64
	QW          float64
	QX          float64
	QY          float64
	QZ          float64
	Speed       float64
	Gear        int
	Steering    float64
	Grounded    int
	AirTime     float64
	EngineForce float64
}

// Recorder accepts samples on the simulation goroutine
type Recorder interface {
	Record(s Sample) error
	Flush(ctx context.Context) error
	Close() error
}
