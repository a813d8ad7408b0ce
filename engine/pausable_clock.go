package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock is simulation time: real elapsed time minus time spent paused
type PausableClock struct {
	mu sync.RWMutex

	source    TimeProvider
	realStart time.Time

	paused      atomic.Bool
	pauseStart  time.Time
	totalPaused time.Duration
}

// NewPausableClock starts a running clock on source; nil uses SystemTime
func NewPausableClock(source TimeProvider) *PausableClock {
	if source == nil {
		source = SystemTime{}
	}
	return &PausableClock{source: source, realStart: source.Now()}
}

// Elapsed is simulation time since the clock started; frozen while paused
func (pc *PausableClock) Elapsed() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.paused.Load() {
		return pc.pauseStart.Sub(pc.realStart) - pc.totalPaused
	}
	return pc.source.Now().Sub(pc.realStart) - pc.totalPaused
}

// Pause stops simulation time; repeated calls are no-ops
func (pc *PausableClock) Pause() {
	if pc.paused.CompareAndSwap(false, true) {
		pc.mu.Lock()
		pc.pauseStart = pc.source.Now()
		pc.mu.Unlock()
	}
}

// Resume continues simulation time, discarding the paused span
func (pc *PausableClock) Resume() {
	if pc.paused.CompareAndSwap(true, false) {
		pc.mu.Lock()
		pc.totalPaused += pc.source.Now().Sub(pc.pauseStart)
		pc.pauseStart = time.Time{}
		pc.mu.Unlock()
	}
}

// Toggle flips the pause state and returns the new state
func (pc *PausableClock) Toggle() bool {
	if pc.paused.Load() {
		pc.Resume()
		return false
	}
	pc.Pause()
	return true
}

func (pc *PausableClock) IsPaused() bool { return pc.paused.Load() }

// TotalPaused includes the current pause, if any
func (pc *PausableClock) TotalPaused() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPaused
	if pc.paused.Load() && !pc.pauseStart.IsZero() {
		total += pc.source.Now().Sub(pc.pauseStart)
	}
	return total
}
