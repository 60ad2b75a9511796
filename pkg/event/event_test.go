package event

import (
	"sync"
	"testing"
)

func TestBus_PublishToSubscriber(t *testing.T) {
	bus := NewEventBus()

	received := make([]Event, 0)
	bus.Subscribe(RocketLaunched, func(e Event) {
		received = append(received, e)
	})

	bus.Publish(&BaseEvent{EventType: RocketLaunched})

	if len(received) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(received))
	}
	if received[0].GetType() != RocketLaunched {
		t.Errorf("Expected type %q, got %q", RocketLaunched, received[0].GetType())
	}
}

func TestBus_PublishWithoutSubscribersIsNoOp(t *testing.T) {
	bus := NewEventBus()
	// Must not panic or block.
	bus.Publish(&BaseEvent{EventType: Touchdown})
}

func TestBus_TypeFiltering(t *testing.T) {
	bus := NewEventBus()

	var launches, touchdowns int
	bus.Subscribe(RocketLaunched, func(e Event) { launches++ })
	bus.Subscribe(Touchdown, func(e Event) { touchdowns++ })

	bus.Publish(&BaseEvent{EventType: RocketLaunched})
	bus.Publish(&BaseEvent{EventType: RocketLaunched})
	bus.Publish(&BaseEvent{EventType: Touchdown})

	if launches != 2 {
		t.Errorf("Expected 2 launch events, got %d", launches)
	}
	if touchdowns != 1 {
		t.Errorf("Expected 1 touchdown event, got %d", touchdowns)
	}
}

func TestBus_MultipleHandlersPerType(t *testing.T) {
	bus := NewEventBus()

	var first, second bool
	bus.Subscribe(FuelExhausted, func(e Event) { first = true })
	bus.Subscribe(FuelExhausted, func(e Event) { second = true })

	bus.Publish(&FlightEvent{
		BaseEvent: BaseEvent{EventType: FuelExhausted},
		Altitude:  1200,
	})

	if !first || !second {
		t.Errorf("Expected both handlers invoked, got first=%v second=%v", first, second)
	}
}

func TestBus_FlightEventPayload(t *testing.T) {
	bus := NewEventBus()

	var got *FlightEvent
	bus.Subscribe(ApogeePassed, func(e Event) {
		if fe, ok := e.(*FlightEvent); ok {
			got = fe
		}
	})

	bus.Publish(&FlightEvent{
		BaseEvent:  BaseEvent{EventType: ApogeePassed},
		FlightTime: 12.5,
		Altitude:   950,
		Speed:      3.2,
	})

	if got == nil {
		t.Fatal("Expected a FlightEvent, got none")
	}
	if got.Altitude != 950 || got.FlightTime != 12.5 {
		t.Errorf("Expected altitude 950 at t=12.5, got %f at t=%f", got.Altitude, got.FlightTime)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewEventBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(WindChanged, func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(&WindEvent{BaseEvent: BaseEvent{EventType: WindChanged}, Speed: 5})
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("Expected 10 events delivered, got %d", count)
	}
}
