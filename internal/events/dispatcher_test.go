package events

import (
	"errors"
	"sync"
	"testing"
)

type recordingObserver struct {
	mu      sync.Mutex
	name    string
	handles func(string) bool
	err     error
	events  []Event
}

func (o *recordingObserver) OnEvent(event Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return o.err
}

func (o *recordingObserver) Name() string { return o.name }

func (o *recordingObserver) ShouldHandle(eventType string) bool {
	if o.handles == nil {
		return true
	}
	return o.handles(eventType)
}

func (o *recordingObserver) received() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}

func TestDispatchReachesAllObservers(t *testing.T) {
	d := NewDispatcher()
	first := &recordingObserver{name: "first"}
	second := &recordingObserver{name: "second"}
	d.Register(first)
	d.Register(second)

	d.Dispatch(Event{Type: TypePriceUpdated, Data: PriceUpdated{Name: "Shock", Set: "m21", Price: 1.5}})

	for _, obs := range []*recordingObserver{first, second} {
		got := obs.received()
		if len(got) != 1 {
			t.Fatalf("observer %s received %d events, want 1", obs.name, len(got))
		}
		if got[0].Type != TypePriceUpdated {
			t.Errorf("observer %s got type %q", obs.name, got[0].Type)
		}
	}
}

func TestDispatchFiltersByShouldHandle(t *testing.T) {
	d := NewDispatcher()
	prices := &recordingObserver{
		name:    "prices",
		handles: func(eventType string) bool { return eventType == TypePriceUpdated },
	}
	d.Register(prices)

	d.Dispatch(Event{Type: TypeCollectionCreated})
	d.Dispatch(Event{Type: TypePriceUpdated})

	got := prices.received()
	if len(got) != 1 || got[0].Type != TypePriceUpdated {
		t.Fatalf("expected only the price event, got %v", got)
	}
}

func TestDispatchContinuesAfterObserverError(t *testing.T) {
	d := NewDispatcher()
	failing := &recordingObserver{name: "failing", err: errors.New("boom")}
	healthy := &recordingObserver{name: "healthy"}
	d.Register(failing)
	d.Register(healthy)

	d.Dispatch(Event{Type: TypeImportCompleted})

	if len(healthy.received()) != 1 {
		t.Fatal("observer after a failing one was not notified")
	}
}

func TestUnregister(t *testing.T) {
	d := NewDispatcher()
	obs := &recordingObserver{name: "transient"}
	d.Register(obs)

	if d.ObserverCount() != 1 {
		t.Fatalf("ObserverCount = %d, want 1", d.ObserverCount())
	}

	d.Unregister(obs)

	if d.ObserverCount() != 0 {
		t.Fatalf("ObserverCount = %d after unregister, want 0", d.ObserverCount())
	}

	d.Dispatch(Event{Type: TypePriceUpdated})
	if len(obs.received()) != 0 {
		t.Fatal("unregistered observer still received events")
	}
}

func TestUnregisterUnknownObserverIsNoOp(t *testing.T) {
	d := NewDispatcher()
	d.Register(&recordingObserver{name: "kept"})

	d.Unregister(&recordingObserver{name: "stranger"})

	if d.ObserverCount() != 1 {
		t.Fatalf("ObserverCount = %d, want 1", d.ObserverCount())
	}
}

func TestConcurrentRegisterAndDispatch(t *testing.T) {
	d := NewDispatcher()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.Register(&recordingObserver{name: "concurrent"})
		}()
		go func() {
			defer wg.Done()
			d.Dispatch(Event{Type: TypePriceUpdated})
		}()
	}
	wg.Wait()

	if d.ObserverCount() != 10 {
		t.Fatalf("ObserverCount = %d, want 10", d.ObserverCount())
	}
}
