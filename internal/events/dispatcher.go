// Package events implements the observer-pattern dispatcher that carries
// domain events (price updates, collection sync outcomes, import results)
// to interested subsystems such as the websocket hub.
package events

import (
	"log"
	"sync"
)

// Event is a domain event delivered to observers.
type Event struct {
	// Type is the event type, e.g. "price:updated".
	Type string `json:"type"`

	// Data is the typed event payload (one of the structs in messages.go).
	Data any `json:"data"`
}

// Observer receives dispatched events.
type Observer interface {
	// OnEvent handles a single event. Errors are logged, never propagated.
	OnEvent(event Event) error

	// Name identifies the observer in logs.
	Name() string

	// ShouldHandle filters which event types this observer cares about.
	ShouldHandle(eventType string) bool
}

// Dispatcher distributes events to registered observers.
// Safe for concurrent use.
type Dispatcher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds an observer. It will receive all future events it elects
// to handle.
func (d *Dispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, observer)
	log.Printf("[Events] Registered observer: %s", observer.Name())
}

// Unregister removes an observer.
func (d *Dispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, obs := range d.observers {
		if obs == observer {
			d.observers[i] = d.observers[len(d.observers)-1]
			d.observers = d.observers[:len(d.observers)-1]
			return
		}
	}
}

// Dispatch notifies observers sequentially in registration order. An
// observer error is logged and dispatch continues.
func (d *Dispatcher) Dispatch(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			log.Printf("[Events] Observer %s failed to handle %s: %v", observer.Name(), event.Type, err)
		}
	}
}

// DispatchAsync notifies each observer in its own goroutine. Used for
// handlers that must not block the caller.
func (d *Dispatcher) DispatchAsync(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		go func(obs Observer) {
			if err := obs.OnEvent(event); err != nil {
				log.Printf("[Events] Observer %s failed to handle %s: %v", obs.Name(), event.Type, err)
			}
		}(observer)
	}
}

// ObserverCount returns the number of registered observers.
func (d *Dispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

func (d *Dispatcher) snapshot() []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	return observers
}
