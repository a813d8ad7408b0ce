package audio

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("audio: invalid config")

// Config controls the horn and speaker
type Config struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	Volume     float64       `mapstructure:"volume" yaml:"volume"` // 0..1
	SampleRate int           `mapstructure:"sample_rate" yaml:"sample_rate"`
	HornHz     float64       `mapstructure:"horn_hz" yaml:"horn_hz"`
	HornLength time.Duration `mapstructure:"horn_length" yaml:"horn_length"`
}

// DefaultConfig is a two-tone car horn at moderate volume
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		Volume:     0.5,
		SampleRate: 48000,
		HornHz:     420,
		HornLength: 350 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Volume < 0 || c.Volume > 1:
		return fmt.Errorf("%w: volume=%v outside [0,1]", ErrInvalidConfig, c.Volume)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample_rate=%d", ErrInvalidConfig, c.SampleRate)
	case c.HornHz <= 0:
		return fmt.Errorf("%w: horn_hz=%v", ErrInvalidConfig, c.HornHz)
	case c.HornLength <= 0:
		return fmt.Errorf("%w: horn_length=%v", ErrInvalidConfig, c.HornLength)
	}
	return nil
}
