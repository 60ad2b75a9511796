// pkg/rocket/telemetry.go
package rocket

import (
	"fmt"
	"math"
)

// Telemetry is a read-only, display-oriented snapshot of the flight state.
// Angle is in degrees with 0 meaning "pointing straight up", shifted from
// the internal radians convention where the rocket is constructed at pi/2.
type Telemetry struct {
	Altitude    float64 `json:"altitude"`
	Speed       float64 `json:"speed"`
	VelocityX   float64 `json:"vx"`
	VelocityY   float64 `json:"vy"`
	Fuel        float64 `json:"fuel"`
	Mass        float64 `json:"mass"`
	FlightTime  string  `json:"flightTime"`
	WindSpeed   float64 `json:"windSpeed"`
	Angle       float64 `json:"angle"`
	MaxAltitude float64 `json:"maxAltitude"`
	Launched    bool    `json:"launched"`
}

// Telemetry projects the current state into a Telemetry record. It does
// not mutate the rocket.
func (r *Rocket) Telemetry() Telemetry {
	return Telemetry{
		Altitude:    r.Position.Y,
		Speed:       r.Velocity.Length(),
		VelocityX:   r.Velocity.X,
		VelocityY:   r.Velocity.Y,
		Fuel:        math.Max(0, r.Fuel),
		Mass:        r.DryMass + r.Fuel,
		FlightTime:  fmt.Sprintf("%.2f", r.FlightTime),
		WindSpeed:   r.WindSpeed,
		Angle:       r.Angle*180/math.Pi - 90,
		MaxAltitude: r.MaxAltitude,
		Launched:    r.Launched,
	}
}
