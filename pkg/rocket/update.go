// pkg/rocket/update.go
package rocket

import (
	"math"

	"github.com/opd-ai/go-rocketsim/pkg/physics"
	"github.com/opd-ai/go-rocketsim/pkg/validation"
)

// Update advances the flight state by one step of at most MaxStep seconds
// using semi-implicit Euler integration: forces are combined into a net
// acceleration, velocity is updated first, then position from the new
// velocity. The throttle scales both fuel burn and thrust for this step.
//
// Update returns an error only for degenerate inputs (NaN, infinite, or
// negative dt/throttle); the state is untouched in that case. Before
// Launch, Update is a no-op.
func (r *Rocket) Update(dt, throttle float64) error {
	if err := validation.ValidateStepInput(dt, throttle); err != nil {
		return err
	}
	if !r.Launched {
		return nil
	}

	if dt > MaxStep {
		dt = MaxStep
	}
	r.FlightTime += dt

	// Burn fuel before computing mass, so thrust this step acts on the
	// post-burn mass.
	burn := r.ConsumptionRate * throttle * dt
	if burn > 0 {
		r.Fuel = math.Max(0, r.Fuel-burn)
	}
	totalMass := r.DryMass + r.Fuel

	// Engine force. No propellant or no throttle means no thrust.
	force := 0.0
	if r.Fuel > 0 && throttle > 0 {
		force = thrustForce * throttle
	}
	thrustAccel := physics.ThrustComponents(force, r.Angle).Scale(1 / totalMass)

	// Wind pushes horizontal velocity toward the combined wind speed.
	wind := r.WindSpeed + r.WindGust
	windAccel := physics.AirDensity * (wind - r.Velocity.X) * windForceScale / totalMass

	// Drag acts against velocity relative to the moving air.
	relVelocity := r.Velocity.Sub(physics.Vector2D{X: wind})
	dragAccel := physics.DragForce(relVelocity, r.DragCoefficient, r.CrossSection).Scale(1 / totalMass)

	accel := physics.Vector2D{
		X: thrustAccel.X + windAccel + dragAccel.X,
		Y: thrustAccel.Y - physics.Gravity + dragAccel.Y,
	}

	// Velocity before position: semi-implicit Euler.
	r.Velocity = r.Velocity.Add(accel.Scale(dt))
	r.Position = r.Position.Add(r.Velocity.Scale(dt))

	if r.Position.Y > r.MaxAltitude {
		r.MaxAltitude = r.Position.Y
	}

	// Ground plane at altitude zero. No passing through, no downward
	// velocity while grounded, and horizontal friction once at rest.
	if r.Position.Y <= 0 {
		r.Position.Y = 0
		if r.Velocity.Y < 0 {
			r.Velocity.Y = 0
		}
		if r.Velocity.Y < physics.SpeedEpsilon {
			r.Velocity.X *= groundFriction
		}
	}

	// Reorient along the velocity vector, but only when actually moving;
	// near zero speed the previous angle persists to avoid jitter.
	if math.Abs(r.Velocity.X) > physics.SpeedEpsilon || math.Abs(r.Velocity.Y) > physics.SpeedEpsilon {
		r.Angle = math.Atan2(r.Velocity.X, r.Velocity.Y)
	}

	return nil
}
