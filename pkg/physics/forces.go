// pkg/physics/forces.go
package physics

import "math"

// Physical constants used by the flight model.
const (
	// Gravity is the gravitational acceleration at the surface, in m/s^2.
	Gravity = 9.81
	// AirDensity is the sea-level air density in kg/m^3. The model treats
	// it as constant regardless of altitude.
	AirDensity = 1.225
	// SpeedEpsilon is the speed below which velocity-direction math is
	// skipped. Normalizing near-zero vectors produces jitter, so drag and
	// reorientation both treat anything slower as "at rest".
	SpeedEpsilon = 0.1
)

// ThrustComponents splits a thrust force magnitude along an orientation
// angle into horizontal and vertical force components. The angle follows
// the flight model's convention: sin(angle) gives the horizontal share
// and cos(angle) the vertical share.
func ThrustComponents(force, angle float64) Vector2D {
	return Vector2D{
		X: force * math.Sin(angle),
		Y: force * math.Cos(angle),
	}
}

// DragForce returns the aerodynamic drag force opposing the given
// air-relative velocity. Magnitude follows the standard quadratic drag
// equation 0.5*rho*v^2*Cd*A. Below SpeedEpsilon the force is zero.
func DragForce(relVelocity Vector2D, dragCoefficient, area float64) Vector2D {
	speed := relVelocity.Length()
	if speed <= SpeedEpsilon {
		return Vector2D{}
	}
	magnitude := 0.5 * AirDensity * speed * speed * dragCoefficient * area
	// Opposes the relative velocity direction.
	return relVelocity.Scale(-magnitude / speed)
}
