// Package rocket implements the 2D flight model: a single rocket state
// advanced by an explicit per-step integrator under thrust, gravity, wind,
// and drag. The state is an owned value; whoever drives the simulation
// holds the *Rocket and calls Update once per tick.
package rocket

import (
	"math"

	"github.com/opd-ai/go-rocketsim/pkg/physics"
)

// Configuration defaults applied when a Config field is zero.
const (
	DefaultDryMass         = 1000.0 // kg
	DefaultThrustScale     = 1.0
	DefaultMaxFuel         = 100.0 // kg
	DefaultConsumptionRate = 10.0  // kg/s at full throttle
	DefaultRadius          = 1.0   // m
	DefaultHeight          = 10.0  // m
	DefaultDragCoefficient = 0.5
)

// Flight model constants.
const (
	// MaxStep caps the integration step. Larger frame gaps are clamped to
	// keep the explicit Euler scheme stable.
	MaxStep = 0.05 // s
	// thrustForce is the engine force at throttle 1.0. It is a fixed
	// constant independent of the configured ThrustScale.
	thrustForce = 50000.0 // N
	// windForceScale is the empirical factor pushing horizontal velocity
	// toward the combined wind speed. Not a physical drag model.
	windForceScale = 500.0
	// groundFriction decays horizontal velocity each step while resting
	// on the ground.
	groundFriction = 0.95
	// gustDecay is the geometric decay factor applied to the accumulated
	// gust once per tick.
	gustDecay = 0.98
)

// Config holds the tunable rocket parameters. A zero value for any field
// falls back to the package default, so partially filled configs (and the
// zero Config) are valid. This means a field cannot be configured to
// literally zero; zero always reads as "use the default".
type Config struct {
	Mass            float64 `json:"mass" yaml:"mass"`                       // dry mass, kg
	Thrust          float64 `json:"thrust" yaml:"thrust"`                   // nominal thrust scale
	Fuel            float64 `json:"fuel" yaml:"fuel"`                       // max fuel load, kg
	ConsumptionRate float64 `json:"consumptionRate" yaml:"consumptionRate"` // kg/s at throttle 1.0
	Radius          float64 `json:"radius" yaml:"radius"`                   // m
	Height          float64 `json:"height" yaml:"height"`                   // m, descriptive only
	DragCoefficient float64 `json:"dragCoefficient" yaml:"dragCoefficient"`
}

// Rocket holds the full flight state: static configuration, kinematics,
// fuel, wind environment, and bookkeeping.
type Rocket struct {
	// Static configuration
	DryMass         float64
	ThrustScale     float64
	MaxFuel         float64
	ConsumptionRate float64
	Radius          float64
	Height          float64
	DragCoefficient float64
	CrossSection    float64 // m^2, derived from Radius

	// Kinematic state. Position.Y is altitude and never goes negative.
	Position physics.Vector2D
	Velocity physics.Vector2D
	// Angle is the orientation in radians. Constructed pointing up
	// (pi/2) and recomputed from atan2(vx, vy) while moving.
	Angle float64

	// Fuel remaining, kg, clamped to [0, MaxFuel].
	Fuel float64

	// Environment
	WindSpeed float64 // steady horizontal wind, m/s
	WindGust  float64 // transient gust, decays geometrically

	// Bookkeeping
	FlightTime  float64 // s since launch
	Launched    bool
	MaxAltitude float64 // m, monotone while launched
}

// New creates a rocket from the given configuration, pointing straight up,
// at rest on the ground, fully fueled, not launched.
func New(cfg Config) *Rocket {
	r := &Rocket{}
	r.applyConfig(cfg)
	return r
}

// applyConfig resolves defaults and resets kinematic, fuel, and bookkeeping
// state. Wind is left alone.
func (r *Rocket) applyConfig(cfg Config) {
	r.DryMass = orDefault(cfg.Mass, DefaultDryMass)
	r.ThrustScale = orDefault(cfg.Thrust, DefaultThrustScale)
	r.MaxFuel = orDefault(cfg.Fuel, DefaultMaxFuel)
	r.ConsumptionRate = orDefault(cfg.ConsumptionRate, DefaultConsumptionRate)
	r.Radius = orDefault(cfg.Radius, DefaultRadius)
	r.Height = orDefault(cfg.Height, DefaultHeight)
	r.DragCoefficient = orDefault(cfg.DragCoefficient, DefaultDragCoefficient)
	r.CrossSection = math.Pi * r.Radius * r.Radius

	r.Position = physics.Vector2D{}
	r.Velocity = physics.Vector2D{}
	r.Angle = math.Pi / 2
	r.Fuel = r.MaxFuel
	r.FlightTime = 0
	r.Launched = false
	r.MaxAltitude = 0
}

// orDefault treats zero as "unset", matching the loose config handling the
// rest of the configuration layer uses for missing fields.
func orDefault(value, def float64) float64 {
	if value == 0 {
		return def
	}
	return value
}

// Launch arms the rocket: the flight clock and the max-altitude tracker
// restart, but position, velocity, fuel, and wind are untouched so that
// pre-launch environment setup survives.
func (r *Rocket) Launch() {
	r.Launched = true
	r.FlightTime = 0
	r.MaxAltitude = 0
}

// Reset reinitializes the rocket from the given configuration, zeroing all
// kinematic and bookkeeping state. Wind speed and gust persist across a
// reset; the environment belongs to the driver, not the rocket.
func (r *Rocket) Reset(cfg Config) {
	r.applyConfig(cfg)
}

// SetWind overwrites the steady wind speed.
func (r *Rocket) SetWind(speed float64) {
	r.WindSpeed = speed
}

// AddGustImpulse adds a transient gust on top of the steady wind. The gust
// does not decay on its own; the driver calls DecayGust once per tick.
func (r *Rocket) AddGustImpulse(magnitude float64) {
	r.WindGust += magnitude
}

// DecayGust applies one tick of geometric gust decay.
func (r *Rocket) DecayGust() {
	r.WindGust *= gustDecay
}

// AddWindGust adds a gust impulse and immediately applies one decay step.
// Drivers that call this every frame (with zero magnitude on quiet frames)
// get the per-tick decay for free; drivers using the split API should call
// AddGustImpulse and DecayGust separately.
func (r *Rocket) AddWindGust(magnitude float64) {
	r.AddGustImpulse(magnitude)
	r.DecayGust()
}

// TotalMass returns dry mass plus remaining fuel.
func (r *Rocket) TotalMass() float64 {
	return r.DryMass + r.Fuel
}
