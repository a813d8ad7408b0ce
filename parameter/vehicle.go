package parameter

import "time"

// Simulation cadence
const (
	// PhysicsHz is the fixed integration rate
	PhysicsHz = 60

	// FixedTimestep is one integration step in seconds
	FixedTimestep = 1.0 / PhysicsHz

	// TickInterval is FixedTimestep as a wall-clock duration for the clock loop
	TickInterval = time.Second / PhysicsHz

	// MaxSubSteps caps catch-up steps per frame so a stall cannot spiral
	MaxSubSteps = 5

	// Gravity is the world Y acceleration
	Gravity = -9.81
)

// Chassis
const (
	ChassisMass        = 800.0
	ChassisHalfWidth   = 0.9
	ChassisHalfHeight  = 0.35
	ChassisHalfLength  = 2.0
	ChassisFriction    = 0.3
	ChassisRestitution = 0.0
)

// Wheel placement, chassis-local
const (
	WheelTrackHalf = 0.8  // X offset of each wheel from centerline
	WheelBaseHalf  = 1.2  // Z offset of each axle from center
	WheelAnchorY   = -0.1 // anchor height below chassis center
	WheelRadius    = 0.25
)

// Suspension, per wheel. Stiffness and damping are per unit chassis mass
const (
	SuspensionStiffness  = 20.0
	SuspensionRestLength = 0.35
	SuspensionMaxTravel  = 0.3
	DampingCompression   = 4.4
	DampingRelaxation    = 2.3
	FrictionSlip         = 1.2
	RollInfluence        = 0.8
	MaxSuspensionForce   = 100000.0
)

// Drivetrain
const (
	// BaseEngineForce is applied per driven wheel at full power factor
	BaseEngineForce = 1500.0

	// ShiftTime is the cooldown after any gear change
	ShiftTime = 0.2

	// UpshiftPowerFactor shifts up once the power factor falls below it
	UpshiftPowerFactor = 0.1

	// DownshiftPowerFactor shifts down once the unclamped power factor rises above it
	DownshiftPowerFactor = 1.2

	// ReverseEngageSpeed is the forward speed below which reverse may engage
	ReverseEngageSpeed = 0.5

	// HandbrakeForce is applied to each handbrake wheel
	HandbrakeForce = 1500.0
)

// Gear indices
const (
	GearReverse = -1
	GearNeutral = 0
)

// GearMaxSpeeds is the top speed (m/s, forward positive) of each gear from reverse upward
var GearMaxSpeeds = []float64{-4, 0, 5, 9, 13, 17, 22}

// Steering
const (
	MaxSteer            = 0.8
	SteeringStiffness   = 200.0
	SteeringDamping     = 20.0
	SteeringSpeedFactor = 0.3
)

// Air control
const (
	AirRampDuration     = 2.0
	AirMaxSpin          = 2.0
	AirSpinAcceleration = 0.15
	AirFlipGain         = 3.0
)

// Non-finite recovery
const (
	// MaxConsecutiveRecoveries marks a controller invalid after this many bad ticks in a row
	MaxConsecutiveRecoveries = 3
)

// Telemetry
const (
	TelemetryRingSize  = 4096
	TelemetryBatchSize = 256
)
