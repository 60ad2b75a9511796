// pkg/engine/sim.go
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/opd-ai/go-rocketsim/pkg/config"
	"github.com/opd-ai/go-rocketsim/pkg/event"
	"github.com/opd-ai/go-rocketsim/pkg/metrics"
	"github.com/opd-ai/go-rocketsim/pkg/rocket"
	"github.com/opd-ai/go-rocketsim/pkg/validation"
)

// SimStatus describes the lifecycle of a simulation run.
type SimStatus int

const (
	SimStatusWaiting SimStatus = iota
	SimStatusActive
	SimStatusEnded
)

// Simulation owns the rocket and drives it at a fixed tick rate. All state
// mutation happens under one lock so telemetry readers (websocket hub,
// metrics scraper) see consistent snapshots.
type Simulation struct {
	Config      *config.SimConfig
	Rocket      *rocket.Rocket
	Running     bool
	Status      SimStatus
	TimeStep    float64 // seconds per tick
	CurrentTick uint64
	LastUpdate  time.Time
	EventBus    *event.Bus
	Collector   *metrics.FlightCollector // optional, nil disables metrics

	stateLock sync.RWMutex

	throttle float64

	scenario *config.Scenario
	nextWind int

	// Transition trackers for event publication.
	prevFuel    float64
	prevVy      float64
	wasAirborne bool
	apogeeSeen  bool
}

// NewSimulation creates a simulation with the specified configuration.
func NewSimulation(cfg *config.SimConfig) *Simulation {
	r := rocket.New(cfg.Rocket)
	r.SetWind(cfg.Wind.Speed)

	tickRate := cfg.Loop.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}

	return &Simulation{
		Config:   cfg,
		Rocket:   r,
		Status:   SimStatusWaiting,
		TimeStep: 1.0 / float64(tickRate),
		EventBus: event.NewEventBus(),
		prevFuel: r.Fuel,
	}
}

// LoadScenario resets the rocket to the scenario's preset and arms the wind
// timeline. Must be called before launch.
func (s *Simulation) LoadScenario(scenario *config.Scenario) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	s.Rocket.Reset(scenario.Rocket)
	s.Rocket.SetWind(scenario.InitialWind)
	s.scenario = scenario
	s.nextWind = 0
	s.throttle = 0
	s.prevFuel = s.Rocket.Fuel
	s.wasAirborne = false
	s.apogeeSeen = false
}

// Start marks the simulation active.
func (s *Simulation) Start() {
	s.stateLock.Lock()
	s.Running = true
	s.Status = SimStatusActive
	s.LastUpdate = time.Now()
	s.stateLock.Unlock()

	s.publish(&event.BaseEvent{EventType: event.SimStarted, Source: s})
}

// Stop halts the simulation update loop.
func (s *Simulation) Stop() {
	s.stateLock.Lock()
	s.Running = false
	s.Status = SimStatusEnded
	s.stateLock.Unlock()

	s.publish(&event.BaseEvent{EventType: event.SimEnded, Source: s})
}

// Launch arms the rocket. Pre-launch wind setup survives, per the flight
// model's launch semantics.
func (s *Simulation) Launch() {
	s.stateLock.Lock()
	s.Rocket.Launch()
	s.prevFuel = s.Rocket.Fuel
	s.prevVy = 0
	s.wasAirborne = false
	s.apogeeSeen = false
	tel := s.Rocket.Telemetry()
	s.stateLock.Unlock()

	s.publishFlight(event.RocketLaunched, tel, 0)
}

// ResetRocket reinitializes the rocket from the configured preset. Wind
// carries over, throttle does not.
func (s *Simulation) ResetRocket() {
	s.stateLock.Lock()
	cfg := s.Config.Rocket
	if s.scenario != nil {
		cfg = s.scenario.Rocket
		s.nextWind = 0
	}
	s.Rocket.Reset(cfg)
	s.throttle = 0
	s.prevFuel = s.Rocket.Fuel
	s.wasAirborne = false
	s.apogeeSeen = false
	tel := s.Rocket.Telemetry()
	s.stateLock.Unlock()

	s.publishFlight(event.RocketReset, tel, 0)
}

// SetThrottle stores the throttle applied on subsequent ticks.
func (s *Simulation) SetThrottle(throttle float64) error {
	if err := validation.FiniteNonNegative("throttle", throttle); err != nil {
		return err
	}
	s.stateLock.Lock()
	s.throttle = throttle
	s.stateLock.Unlock()
	return nil
}

// Throttle returns the currently applied throttle.
func (s *Simulation) Throttle() float64 {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.throttle
}

// SetWind overwrites the steady wind speed.
func (s *Simulation) SetWind(speed float64) error {
	if err := validation.ValidateWindSpeed(speed); err != nil {
		return err
	}
	s.stateLock.Lock()
	s.Rocket.SetWind(speed)
	gust := s.Rocket.WindGust
	s.stateLock.Unlock()

	s.publishWind(speed, gust)
	return nil
}

// AddGust adds a transient gust on top of the steady wind.
func (s *Simulation) AddGust(magnitude float64) error {
	if err := validation.ValidateWindSpeed(magnitude); err != nil {
		return err
	}
	s.stateLock.Lock()
	s.Rocket.AddGustImpulse(magnitude)
	speed := s.Rocket.WindSpeed
	gust := s.Rocket.WindGust
	s.stateLock.Unlock()

	s.publishWind(speed, gust)
	return nil
}

// Telemetry returns a consistent snapshot of the rocket state.
func (s *Simulation) Telemetry() rocket.Telemetry {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.Rocket.Telemetry()
}

// GetRunning reports whether the update loop is active.
func (s *Simulation) GetRunning() bool {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.Running
}

// Update advances the simulation by the wall-clock time since the last
// update, capped the same way the flight model caps its step.
func (s *Simulation) Update() {
	s.Step(s.calculateDeltaTime())
}

// Step advances the simulation by an explicit time step. Scripted drivers
// and tests use this directly for determinism.
func (s *Simulation) Step(deltaTime float64) {
	s.stateLock.Lock()

	if !s.Running {
		s.stateLock.Unlock()
		return
	}

	s.applyScenarioWind()

	// One decay per tick. Gust impulses arrive through AddGust; the decay
	// cadence belongs to the loop.
	s.Rocket.DecayGust()

	start := time.Now()
	err := s.Rocket.Update(deltaTime, s.throttle)
	elapsed := time.Since(start)

	var fired []flightTransition
	if err == nil {
		fired = s.detectTransitions()
	}
	s.CurrentTick++

	tel := s.Rocket.Telemetry()
	s.stateLock.Unlock()

	if s.Collector != nil {
		s.Collector.ObserveStep(elapsed)
		s.Collector.Observe(tel)
	}
	for _, tr := range fired {
		s.publishFlight(tr.eventType, tr.snapshot, tr.flightTime)
	}
}

// flightTransition is a deferred event publication; events fire outside the
// state lock so handlers can call back into the simulation.
type flightTransition struct {
	eventType  event.Type
	snapshot   rocket.Telemetry
	flightTime float64
}

// detectTransitions compares the post-step state against the trackers and
// returns the events this step produced. Caller holds stateLock.
func (s *Simulation) detectTransitions() []flightTransition {
	var fired []flightTransition
	r := s.Rocket

	if s.prevFuel > 0 && r.Fuel == 0 {
		fired = append(fired, flightTransition{event.FuelExhausted, r.Telemetry(), r.FlightTime})
	}
	s.prevFuel = r.Fuel

	if r.Launched && r.Position.Y > 0 {
		if !s.apogeeSeen && s.prevVy > 0 && r.Velocity.Y <= 0 {
			s.apogeeSeen = true
			fired = append(fired, flightTransition{event.ApogeePassed, r.Telemetry(), r.FlightTime})
		}
		s.wasAirborne = true
	}
	s.prevVy = r.Velocity.Y

	if s.wasAirborne && r.Position.Y == 0 {
		s.wasAirborne = false
		fired = append(fired, flightTransition{event.Touchdown, r.Telemetry(), r.FlightTime})
	}

	return fired
}

// applyScenarioWind replays wind timeline entries whose time has come.
// Caller holds stateLock.
func (s *Simulation) applyScenarioWind() {
	if s.scenario == nil || !s.Rocket.Launched {
		return
	}
	for s.nextWind < len(s.scenario.Wind) && s.scenario.Wind[s.nextWind].At <= s.Rocket.FlightTime {
		ev := s.scenario.Wind[s.nextWind]
		if ev.Speed != nil {
			s.Rocket.SetWind(*ev.Speed)
		}
		if ev.Gust != 0 {
			s.Rocket.AddGustImpulse(ev.Gust)
		}
		s.nextWind++
	}
}

// calculateDeltaTime calculates the time since the last update and caps it.
func (s *Simulation) calculateDeltaTime() float64 {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	now := time.Now()
	deltaTime := now.Sub(s.LastUpdate).Seconds()
	s.LastUpdate = now

	// Cap delta time to prevent physics issues after a stall.
	if deltaTime > 0.1 {
		deltaTime = 0.1
	}
	return deltaTime
}

// Run drives the simulation at the configured tick rate until the context
// is canceled. Start and Stop bracket the loop.
func (s *Simulation) Run(ctx context.Context) error {
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(time.Duration(s.TimeStep * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Update()
		}
	}
}

// publish sends an event and counts it when metrics are attached.
func (s *Simulation) publish(e event.Event) {
	if s.Collector != nil {
		s.Collector.IncEvent(string(e.GetType()))
	}
	s.EventBus.Publish(e)
}

func (s *Simulation) publishFlight(t event.Type, tel rocket.Telemetry, flightTime float64) {
	s.publish(&event.FlightEvent{
		BaseEvent:  event.BaseEvent{EventType: t, Source: s},
		FlightTime: flightTime,
		Altitude:   tel.Altitude,
		Speed:      tel.Speed,
	})
}

func (s *Simulation) publishWind(speed, gust float64) {
	s.publish(&event.WindEvent{
		BaseEvent: event.BaseEvent{EventType: event.WindChanged, Source: s},
		Speed:     speed,
		Gust:      gust,
	})
}
