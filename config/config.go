// Package config assembles the simulation, vehicle, audio, telemetry and key settings
// from defaults, an optional YAML file and RAYCAR_* environment overrides
package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/raycar/audio"
	"github.com/lixenwraith/raycar/input"
	"github.com/lixenwraith/raycar/parameter"
	"github.com/lixenwraith/raycar/vehicle"
	"github.com/lixenwraith/raycar/vmath"
)

var ErrInvalidConfig = errors.New("config: invalid")

// EnvPrefix namespaces environment overrides: sim.physics_hz ← RAYCAR_SIM_PHYSICS_HZ
const EnvPrefix = "RAYCAR"

// Ground kinds
const (
	GroundFlat = "flat"
	GroundNone = "none"
)

// Telemetry stores
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type SimConfig struct {
	PhysicsHz    int     `mapstructure:"physics_hz" yaml:"physics_hz"`
	MaxSubSteps  int     `mapstructure:"max_sub_steps" yaml:"max_sub_steps"`
	Gravity      float64 `mapstructure:"gravity" yaml:"gravity"`
	Ground       string  `mapstructure:"ground" yaml:"ground"`
	GroundHeight float64 `mapstructure:"ground_height" yaml:"ground_height"`
}

// Timestep is one physics step in seconds
func (s SimConfig) Timestep() float64 { return 1 / float64(s.PhysicsHz) }

// SpawnConfig places the player vehicle at startup
type SpawnConfig struct {
	Position mgl64.Vec3 `mapstructure:"position" yaml:"position,flow"`
	Heading  float64    `mapstructure:"heading" yaml:"heading"` // radians around world up
}

type TelemetryConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Store     string `mapstructure:"store" yaml:"store"`
	DSN       string `mapstructure:"dsn" yaml:"dsn"`
	RingSize  int    `mapstructure:"ring_size" yaml:"ring_size"`
	BatchSize int    `mapstructure:"batch_size" yaml:"batch_size"`
	Every     int    `mapstructure:"every" yaml:"every"` // record one sample per this many steps
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Config is the full runtime configuration
type Config struct {
	Sim       SimConfig         `mapstructure:"sim" yaml:"sim"`
	Spawn     SpawnConfig       `mapstructure:"spawn" yaml:"spawn"`
	Vehicle   vehicle.Config    `mapstructure:"vehicle" yaml:"vehicle"`
	Audio     audio.Config      `mapstructure:"audio" yaml:"audio"`
	Telemetry TelemetryConfig   `mapstructure:"telemetry" yaml:"telemetry"`
	Log       LogConfig         `mapstructure:"log" yaml:"log"`
	Keys      map[string]string `mapstructure:"keys" yaml:"keys"`
}

// Default returns the stock configuration
func Default() Config {
	return Config{
		Sim: SimConfig{
			PhysicsHz:   parameter.PhysicsHz,
			MaxSubSteps: parameter.MaxSubSteps,
			Gravity:     parameter.Gravity,
			Ground:      GroundFlat,
		},
		Spawn: SpawnConfig{
			Position: mgl64.Vec3{0, 1, 0},
		},
		Vehicle: vehicle.DefaultConfig(),
		Audio:   audio.DefaultConfig(),
		Telemetry: TelemetryConfig{
			Store:     StoreMemory,
			RingSize:  parameter.TelemetryRingSize,
			BatchSize: parameter.TelemetryBatchSize,
			Every:     1,
		},
		Log: LogConfig{
			Level: "info",
		},
		Keys: map[string]string{},
	}
}

// Load layers path (if non-empty) and RAYCAR_* environment variables over Default
func Load(path string) (Config, error) {
	base, err := Marshal(Default())
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return Config{}, fmt.Errorf("config: defaults: %w", err)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Keys == nil {
		cfg.Keys = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal renders cfg as YAML; the output loads back through Load
func Marshal(cfg Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return out, nil
}

// Fingerprint hashes the YAML form so runs can be tagged with the config they used
func Fingerprint(cfg Config) (uint64, error) {
	out, err := Marshal(cfg)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(out), nil
}

// Validate checks every section; failures wrap ErrInvalidConfig
func (c Config) Validate() error {
	s := c.Sim
	switch {
	case s.PhysicsHz < 1 || s.PhysicsHz > 1000:
		return fmt.Errorf("%w: sim.physics_hz=%d outside [1,1000]", ErrInvalidConfig, s.PhysicsHz)
	case s.MaxSubSteps < 1:
		return fmt.Errorf("%w: sim.max_sub_steps=%d", ErrInvalidConfig, s.MaxSubSteps)
	case !vmath.IsFinite(s.Gravity):
		return fmt.Errorf("%w: sim.gravity=%v", ErrInvalidConfig, s.Gravity)
	case s.Ground != GroundFlat && s.Ground != GroundNone:
		return fmt.Errorf("%w: sim.ground=%q", ErrInvalidConfig, s.Ground)
	case !vmath.IsFinite(s.GroundHeight):
		return fmt.Errorf("%w: sim.ground_height=%v", ErrInvalidConfig, s.GroundHeight)
	}

	if !vmath.V3Finite(c.Spawn.Position) || !vmath.IsFinite(c.Spawn.Heading) {
		return fmt.Errorf("%w: spawn not finite", ErrInvalidConfig)
	}
	if err := c.Vehicle.Validate(); err != nil {
		return fmt.Errorf("%w: vehicle: %w", ErrInvalidConfig, err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("%w: audio: %w", ErrInvalidConfig, err)
	}

	t := c.Telemetry
	switch {
	case t.Store != StoreMemory && t.Store != StoreSQLite:
		return fmt.Errorf("%w: telemetry.store=%q", ErrInvalidConfig, t.Store)
	case t.RingSize < 1 || t.BatchSize < 1 || t.Every < 1:
		return fmt.Errorf("%w: telemetry sizes ring=%d batch=%d every=%d", ErrInvalidConfig, t.RingSize, t.BatchSize, t.Every)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	if _, err := c.KeyTable(); err != nil {
		return fmt.Errorf("%w: keys: %w", ErrInvalidConfig, err)
	}
	return nil
}

// KeyTable merges the key overrides into the default bindings
func (c Config) KeyTable() (*input.KeyTable, error) {
	override, err := input.LoadKeyConfig(c.Keys)
	if err != nil {
		return nil, err
	}
	return input.MergeKeyTable(input.DefaultKeyTable(), override), nil
}
