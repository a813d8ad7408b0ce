package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain streams s to completion, or until limit samples, and returns them
func drain(s beep.Streamer, limit int) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for len(out) < limit {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok || n < len(buf) {
			break
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

const noLimit = 1 << 20

func TestOscillatorLength(t *testing.T) {
	rate := beep.SampleRate(8000)
	got := drain(NewOscillator(440, 100*time.Millisecond, WaveSine, rate), noLimit)
	assert.Len(t, got, 800)

	for _, s := range got {
		assert.LessOrEqual(t, math.Abs(s[0]), 1.0)
		assert.Equal(t, s[0], s[1])
	}
}

func TestOscillatorSquare(t *testing.T) {
	rate := beep.SampleRate(8)
	got := drain(NewOscillator(1, time.Second, WaveSquare, rate), noLimit)
	require.Len(t, got, 8)
	for i, s := range got {
		want := 1.0
		if i >= 4 {
			want = -1
		}
		assert.Equal(t, want, s[0], "sample %d", i)
	}
}

func TestEnvelopeRamps(t *testing.T) {
	rate := beep.SampleRate(1000)
	d := 100 * time.Millisecond
	got := drain(NewEnvelope(NewOscillator(1, d, WaveSquare, rate), d, 10*time.Millisecond, 20*time.Millisecond, rate), noLimit)
	require.Len(t, got, 100)

	assert.Zero(t, got[0][0], "attack starts silent")
	assert.InDelta(t, 0.5, got[5][0], 1e-12)
	assert.Equal(t, 1.0, got[50][0])
	assert.InDelta(t, 0.05, got[99][0], 1e-12)
}

func TestHornSound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 8000
	n := beep.SampleRate(8000).N(cfg.HornLength)
	got := drain(CreateHornSound(cfg), 2*n)
	require.GreaterOrEqual(t, len(got), n)

	peak := 0.0
	for i, s := range got {
		if i >= n {
			assert.Zero(t, s[0], "silent after the horn length")
			continue
		}
		peak = math.Max(peak, math.Abs(s[0]))
	}
	assert.Greater(t, peak, 0.0)
	assert.LessOrEqual(t, peak, cfg.Volume*0.9+1e-9)
}

func TestHornSilentVolume(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 8000
	cfg.Volume = 0
	for _, s := range drain(CreateHornSound(cfg), 4096) {
		assert.Zero(t, s[0])
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.Volume = 1.5
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c = DefaultConfig()
	c.HornLength = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	_, err := NewHorn(c, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestHornCountsWithoutSpeaker(t *testing.T) {
	h, err := NewHorn(DefaultConfig(), nil)
	require.NoError(t, err)

	h.Honk()
	h.Honk()
	assert.Equal(t, int64(2), h.Honks())

	h.SetMuted(true)
	assert.True(t, h.Muted())
	h.Honk()
	assert.Equal(t, int64(3), h.Honks())
	h.Close()
}

func TestHornDisabledStartsMuted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	h, err := NewHorn(cfg, nil)
	require.NoError(t, err)
	assert.True(t, h.Muted())
	require.NoError(t, h.Init())
	h.Honk()
	assert.Equal(t, int64(1), h.Honks())
}
