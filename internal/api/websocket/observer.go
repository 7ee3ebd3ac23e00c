package websocket

import (
	"github.com/portalmtg/portal/internal/events"
)

// EventObserver forwards dispatcher events to WebSocket clients. Register
// it with an events.Dispatcher to push price updates, sync failures and
// import results to the browser.
type EventObserver struct {
	hub *Hub
}

// NewEventObserver creates an observer that broadcasts through hub.
func NewEventObserver(hub *Hub) *EventObserver {
	return &EventObserver{hub: hub}
}

// OnEvent broadcasts the event to all connected clients.
func (o *EventObserver) OnEvent(event events.Event) error {
	o.hub.BroadcastEvent(Event{
		Type: event.Type,
		Data: event.Data,
	})
	return nil
}

// Name identifies the observer in dispatcher logs.
func (o *EventObserver) Name() string {
	return "WebSocketObserver"
}

// ShouldHandle forwards every event type to clients.
func (o *EventObserver) ShouldHandle(eventType string) bool {
	return true
}

var _ events.Observer = (*EventObserver)(nil)
