package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/raycar/input"
	"github.com/lixenwraith/raycar/status"
)

// FrameFunc observes the engine after each frame's steps; it runs on the scheduler goroutine
type FrameFunc func(e *Engine, steps int)

// ClockScheduler drives the engine from a pausable clock at a fixed frame cadence
// Each frame polls input, advances the engine by elapsed simulation time and calls the frame hook
// Engine access belongs to this goroutine while it runs
type ClockScheduler struct {
	engine   *Engine
	clock    *PausableClock
	receiver *input.Receiver
	onFrame  FrameFunc
	log      *zap.Logger

	frameInterval time.Duration
	lastElapsed   time.Duration

	frames   atomic.Uint64
	running  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	statPaused *atomic.Bool
}

// NewClockScheduler creates a stopped scheduler; receiver and onFrame may be nil
func NewClockScheduler(e *Engine, clock *PausableClock, receiver *input.Receiver, frameInterval time.Duration, onFrame FrameFunc) *ClockScheduler {
	if clock == nil {
		clock = NewPausableClock(nil)
	}
	if frameInterval <= 0 {
		frameInterval = time.Duration(e.Timestep() * float64(time.Second))
	}
	return &ClockScheduler{
		engine:        e,
		clock:         clock,
		receiver:      receiver,
		onFrame:       onFrame,
		log:           e.log,
		frameInterval: frameInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		statPaused:    e.status.Bools.Get(status.MetricPaused),
	}
}

func (cs *ClockScheduler) Clock() *PausableClock { return cs.clock }
func (cs *ClockScheduler) Frames() uint64        { return cs.frames.Load() }

// Pause freezes simulation time; input is still polled so edges do not pile up
func (cs *ClockScheduler) Pause() {
	cs.clock.Pause()
	cs.statPaused.Store(true)
}

func (cs *ClockScheduler) Resume() {
	cs.clock.Resume()
	cs.statPaused.Store(false)
}

// TogglePause flips pause and returns the new state
func (cs *ClockScheduler) TogglePause() bool {
	p := cs.clock.Toggle()
	cs.statPaused.Store(p)
	return p
}

// Run blocks until ctx is done or Stop is called
func (cs *ClockScheduler) Run(ctx context.Context) error {
	if !cs.running.CompareAndSwap(false, true) {
		return nil
	}
	defer close(cs.done)

	cs.lastElapsed = cs.clock.Elapsed()
	ticker := time.NewTicker(cs.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-cs.stop:
			return nil
		case <-ticker.C:
			cs.Frame()
		}
	}
}

// Start runs the scheduler on its own crash-guarded goroutine
func (cs *ClockScheduler) Start(ctx context.Context) {
	Go(func() {
		if err := cs.Run(ctx); err != nil && ctx.Err() == nil {
			cs.log.Error("scheduler stopped", zap.Error(err))
		}
	})
}

// Stop ends Run and waits for it when it was started
func (cs *ClockScheduler) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.stop)
		if cs.running.Load() {
			<-cs.done
		}
	})
}

// Frame runs one frame synchronously; Run calls it on every tick
func (cs *ClockScheduler) Frame() int {
	elapsed := cs.clock.Elapsed()
	frameDt := (elapsed - cs.lastElapsed).Seconds()
	cs.lastElapsed = elapsed

	if cs.receiver != nil {
		snap := cs.receiver.Poll(cs.clock.source.Now())
		if !cs.clock.IsPaused() {
			cs.engine.ApplyInput(snap)
		}
	}

	steps := 0
	if !cs.clock.IsPaused() {
		steps = cs.engine.Advance(frameDt)
	}
	cs.frames.Add(1)
	if cs.onFrame != nil {
		cs.onFrame(cs.engine, steps)
	}
	return steps
}
