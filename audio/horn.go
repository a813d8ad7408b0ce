// Package audio plays the vehicle horn through the beep speaker
package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// Horn sounds on demand; without an initialized speaker it only counts honks
// Honk is safe to call from the simulation goroutine
type Horn struct {
	mu          sync.Mutex
	cfg         Config
	log         *zap.Logger
	mixer       *beep.Mixer
	initialized bool

	honks atomic.Int64
	muted atomic.Bool
}

// NewHorn validates cfg; call Init to open the speaker
func NewHorn(cfg Config, log *zap.Logger) (*Horn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	h := &Horn{cfg: cfg, log: log, mixer: &beep.Mixer{}}
	h.muted.Store(!cfg.Enabled)
	return h, nil
}

// Init opens the speaker; a missing audio device leaves the horn silent, not failed
func (h *Horn) Init() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized || !h.cfg.Enabled {
		return nil
	}
	rate := beep.SampleRate(h.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		h.log.Warn("speaker unavailable, horn silent", zap.Error(err))
		return nil
	}
	speaker.Play(h.mixer)
	h.initialized = true
	return nil
}

// Honk starts the horn unless it is already sounding
func (h *Horn) Honk() {
	h.honks.Add(1)
	if h.muted.Load() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.initialized {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()
	// Finished streamers drop out of the mixer
	if h.mixer.Len() > 0 {
		return
	}
	h.mixer.Add(CreateHornSound(h.cfg))
}

// Honks is the number of Honk calls, sounded or not
func (h *Horn) Honks() int64 { return h.honks.Load() }

// SetMuted toggles audible output; honks are still counted
func (h *Horn) SetMuted(m bool) { h.muted.Store(m) }
func (h *Horn) Muted() bool     { return h.muted.Load() }

// Close stops playback and releases the speaker
func (h *Horn) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	h.initialized = false
}
