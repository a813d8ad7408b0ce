package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/lixenwraith/raycar/config"
	"github.com/lixenwraith/raycar/engine"
	"github.com/lixenwraith/raycar/input"
	"github.com/lixenwraith/raycar/service"
	"github.com/lixenwraith/raycar/telemetry"
	"github.com/lixenwraith/raycar/vmath"
)

func headingQuat(heading float64) mgl64.Quat {
	return mgl64.QuatRotate(heading, vmath.LocalUp)
}

// runHeadless steps the engine as fast as possible with throttle held and prints a summary
func runHeadless(ctx context.Context, cfg config.Config, log *zap.Logger, hub *service.Hub, recorder telemetry.Recorder, d time.Duration) error {
	e, err := engine.New(cfg, engine.Options{Log: log, Recorder: recorder})
	if err != nil {
		return err
	}
	if err := registerEngine(hub, e); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	h, err := spawnPlayer(e, cfg)
	if err != nil {
		return err
	}
	c, err := e.Vehicle(h)
	if err != nil {
		return err
	}
	c.Input().Press(input.ActionThrottle)

	steps := int(math.Ceil(d.Seconds() / e.Timestep()))
	maxSpeed := 0.0
	for i := 0; i < steps; i++ {
		if ctx.Err() != nil {
			break
		}
		e.Step()
		maxSpeed = math.Max(maxSpeed, c.Speed())
		if c.Invalid() {
			break
		}
	}

	p := c.Transform().Position
	fmt.Fprintf(os.Stdout, "steps=%d sim_time=%.2fs gear=%s speed=%.2fm/s max_speed=%.2fm/s grounded=%d shifts=%d position=(%.2f, %.2f, %.2f)\n",
		e.Steps(), e.SimTime(), c.Gear(), c.Speed(), maxSpeed, c.GroundedCount(), c.Drivetrain().Shifts(), p.X(), p.Y(), p.Z())

	if mem, ok := recorder.(*telemetry.MemoryRecorder); ok {
		fmt.Fprintf(os.Stdout, "telemetry samples=%d dropped=%d\n", mem.Len(), mem.Dropped())
	}
	return nil
}
