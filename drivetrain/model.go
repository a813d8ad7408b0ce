package drivetrain

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lixenwraith/raycar/vmath"
)

// Config holds the drivetrain constants
type Config struct {
	BaseForce          float64   `mapstructure:"base_force" yaml:"base_force"`
	ShiftTime          float64   `mapstructure:"shift_time" yaml:"shift_time"`
	UpshiftFactor      float64   `mapstructure:"upshift_factor" yaml:"upshift_factor"`
	DownshiftFactor    float64   `mapstructure:"downshift_factor" yaml:"downshift_factor"`
	ReverseEngageSpeed float64   `mapstructure:"reverse_engage_speed" yaml:"reverse_engage_speed"`
	Gears              GearTable `mapstructure:"gears" yaml:"gears,flow"`
}

// Validate checks the gear table and force constants
func (c Config) Validate() error {
	if err := c.Gears.Validate(); err != nil {
		return err
	}
	if !vmath.IsFinite(c.BaseForce) || c.BaseForce < 0 {
		return fmt.Errorf("%w: base_force=%v", ErrInvalidConfig, c.BaseForce)
	}
	if !vmath.IsFinite(c.ShiftTime) || c.ShiftTime < 0 {
		return fmt.Errorf("%w: shift_time=%v", ErrInvalidConfig, c.ShiftTime)
	}
	if c.UpshiftFactor < 0 || c.UpshiftFactor >= 1 || c.DownshiftFactor <= 1 {
		return fmt.Errorf("%w: shift factors up=%v down=%v must satisfy 0<=up<1<down",
			ErrInvalidConfig, c.UpshiftFactor, c.DownshiftFactor)
	}
	return nil
}

// Model is the automatic transmission state machine
// One shift at most per ShiftTime; the cooldown also runs from construction
type Model struct {
	cfg Config
	log *zap.Logger

	gear        Gear
	cooldown    float64
	engineForce float64
	transmitted bool
	shifts      uint64
}

// New creates a model in first gear with the shift cooldown armed
func New(cfg Config, log *zap.Logger) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{cfg: cfg, log: log}
	m.Reset()
	return m, nil
}

// Reset returns to first gear with zero force and a full cooldown
func (m *Model) Reset() {
	m.gear = GearFirst
	m.cooldown = m.cfg.ShiftTime
	m.engineForce = 0
	m.transmitted = false
}

func (m *Model) Gear() Gear           { return m.gear }
func (m *Model) Cooldown() float64    { return m.cooldown }
func (m *Model) EngineForce() float64 { return m.engineForce }
func (m *Model) Shifts() uint64       { return m.shifts }
func (m *Model) Table() GearTable     { return m.cfg.Gears }
func (m *Model) Config() Config       { return m.cfg }

// WheelForce is the force actually transmitted to the wheels: zero with no wheel grounded
func (m *Model) WheelForce() float64 {
	if !m.transmitted {
		return 0
	}
	return m.engineForce
}

// Update advances the cooldown, auto-shifts and returns the computed engine force
// speed is forward speed in m/s; grounded gates transmission, not computation
func (m *Model) Update(throttle, reverse bool, speed float64, grounded int, dt float64) float64 {
	if m.cooldown > 0 {
		m.cooldown -= dt
		if m.cooldown < 0 {
			m.cooldown = 0
		}
	}

	if m.cooldown == 0 {
		if to, ok := m.nextGear(throttle, reverse, speed); ok {
			m.shift(to, speed)
		}
	}

	m.engineForce = m.force(throttle, reverse, speed)
	m.transmitted = grounded > 0
	return m.engineForce
}

// nextGear decides at most one gear change for the current input and speed
func (m *Model) nextGear(throttle, reverse bool, speed float64) (Gear, bool) {
	table := m.cfg.Gears

	switch {
	case reverse && !throttle:
		if m.gear != GearReverse && speed < m.cfg.ReverseEngageSpeed {
			return GearReverse, true
		}
	case throttle && !reverse:
		if m.gear <= GearNeutral {
			return GearFirst, true
		}
	case !throttle && !reverse:
		if m.gear == GearReverse && speed > -m.cfg.ReverseEngageSpeed && speed < m.cfg.ReverseEngageSpeed {
			return GearNeutral, true
		}
	}

	if m.gear >= GearFirst {
		raw := table.RawPowerFactor(m.gear, speed)
		if raw < m.cfg.UpshiftFactor && m.gear < table.Top() {
			return m.gear + 1, true
		}
		if raw > m.cfg.DownshiftFactor && m.gear > GearFirst {
			return m.gear - 1, true
		}
	}
	return m.gear, false
}

func (m *Model) shift(to Gear, speed float64) {
	m.log.Debug("gear shift",
		zap.Stringer("from", m.gear),
		zap.Stringer("to", to),
		zap.Float64("speed", speed),
	)
	m.gear = to
	m.cooldown = m.cfg.ShiftTime
	m.shifts++
}

// force computes baseForce × sign(throttle−reverse) × powerFactor
// Reverse input uses the reverse band whatever the gear, so it brakes forward motion
func (m *Model) force(throttle, reverse bool, speed float64) float64 {
	dir := 0.0
	if throttle {
		dir++
	}
	if reverse {
		dir--
	}

	table := m.cfg.Gears
	switch {
	case dir > 0 && m.gear >= GearFirst:
		return m.cfg.BaseForce * table.PowerFactor(m.gear, speed)
	case dir < 0:
		return -m.cfg.BaseForce * table.PowerFactor(GearReverse, speed)
	default:
		return 0
	}
}
