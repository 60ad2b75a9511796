// Package metrics bundles Prometheus metrics for the simulation loop and
// provides helpers to wire them into the simulator's HTTP surface.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opd-ai/go-rocketsim/pkg/rocket"
)

// FlightCollector bundles Prometheus metrics describing the current flight
// and the health of the simulation loop.
type FlightCollector struct {
	gatherer prometheus.Gatherer

	Altitude    prometheus.Gauge
	MaxAltitude prometheus.Gauge
	Speed       prometheus.Gauge
	Fuel        prometheus.Gauge
	Mass        prometheus.Gauge
	WindSpeed   prometheus.Gauge

	Ticks        prometheus.Counter
	FlightEvents *prometheus.CounterVec
	StepDuration prometheus.Histogram
}

// NewFlightCollector registers flight metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewFlightCollector(reg prometheus.Registerer) (*FlightCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &FlightCollector{gatherer: gatherer}

	gauges := []struct {
		target *prometheus.Gauge
		name   string
		help   string
	}{
		{&c.Altitude, "rocket_altitude_meters", "Current altitude of the rocket in meters."},
		{&c.MaxAltitude, "rocket_max_altitude_meters", "Maximum altitude reached during the current flight."},
		{&c.Speed, "rocket_speed_mps", "Current scalar speed of the rocket in m/s."},
		{&c.Fuel, "rocket_fuel_kg", "Remaining fuel mass in kg."},
		{&c.Mass, "rocket_total_mass_kg", "Total rocket mass (dry plus fuel) in kg."},
		{&c.WindSpeed, "rocket_wind_speed_mps", "Steady wind speed applied to the rocket in m/s."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: g.name,
			Help: g.help,
		}), g.name)
		if err != nil {
			return nil, err
		}
		*g.target = gauge
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_ticks_total",
		Help: "Total number of simulation ticks executed.",
	}), "sim_ticks_total")
	if err != nil {
		return nil, err
	}
	c.Ticks = ticks

	events, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_flight_events_total",
		Help: "Total flight events published, labeled by event type.",
	}, []string{"type"}), "sim_flight_events_total")
	if err != nil {
		return nil, err
	}
	c.FlightEvents = events

	steps, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_step_duration_seconds",
		Help:    "Wall-clock duration of a single integration step.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	}), "sim_step_duration_seconds")
	if err != nil {
		return nil, err
	}
	c.StepDuration = steps

	return c, nil
}

// Observe updates the flight gauges from a telemetry snapshot.
func (c *FlightCollector) Observe(t rocket.Telemetry) {
	c.Altitude.Set(t.Altitude)
	c.MaxAltitude.Set(t.MaxAltitude)
	c.Speed.Set(t.Speed)
	c.Fuel.Set(t.Fuel)
	c.Mass.Set(t.Mass)
	c.WindSpeed.Set(t.WindSpeed)
}

// ObserveStep records the wall-clock cost of one integration step and
// counts the tick.
func (c *FlightCollector) ObserveStep(d time.Duration) {
	c.Ticks.Inc()
	c.StepDuration.Observe(d.Seconds())
}

// IncEvent counts one published flight event of the given type.
func (c *FlightCollector) IncEvent(eventType string) {
	c.FlightEvents.WithLabelValues(eventType).Inc()
}

// Handler returns an HTTP handler exposing this collector's registry.
func (c *FlightCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// registerGauge registers a gauge, reusing an existing collector when the
// same metric was already registered.
func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return gauge, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return hist, nil
}
