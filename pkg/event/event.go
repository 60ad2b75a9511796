// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Flight and simulation event types
const (
	SimStarted     Type = "sim_started"
	SimEnded       Type = "sim_ended"
	RocketLaunched Type = "rocket_launched"
	RocketReset    Type = "rocket_reset"
	ApogeePassed   Type = "apogee_passed"
	FuelExhausted  Type = "fuel_exhausted"
	Touchdown      Type = "touchdown"
	WindChanged    Type = "wind_changed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// FlightEvent carries a point-in-flight snapshot alongside the event type.
// Altitude and speed are captured at the moment the transition was seen.
type FlightEvent struct {
	BaseEvent
	FlightTime float64
	Altitude   float64
	Speed      float64
}

// WindEvent reports an environment change applied to the rocket.
type WindEvent struct {
	BaseEvent
	Speed float64
	Gust  float64
}

// Handler is a function that handles events
type Handler func(Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers, ok := b.handlers[event.GetType()]
	b.mu.RUnlock()

	if !ok {
		return
	}

	// Call each handler
	for _, handler := range handlers {
		handler(event)
	}
}
