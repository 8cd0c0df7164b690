package media

import "testing"

func TestHubDeliversInRegistrationOrder(t *testing.T) {
	var hub Hub
	var order []int

	hub.Subscribe(SignalTimeUpdate, func(Event) { order = append(order, 1) })
	hub.Subscribe(SignalTimeUpdate, func(Event) { order = append(order, 2) })
	hub.Subscribe(SignalSeeked, func(Event) { order = append(order, 99) })

	hub.Emit(Event{Signal: SignalTimeUpdate})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("delivery order = %v, expected [1 2]", order)
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	var hub Hub
	calls := 0

	cancel := hub.Subscribe(SignalSeeked, func(Event) { calls++ })
	hub.Emit(Event{Signal: SignalSeeked})
	cancel()
	hub.Emit(Event{Signal: SignalSeeked})

	if calls != 1 {
		t.Errorf("handler ran %d times, expected 1", calls)
	}
}

func TestHubReentrantEmit(t *testing.T) {
	var hub Hub
	seeked := 0

	hub.Subscribe(SignalSeeked, func(Event) { seeked++ })
	hub.Subscribe(SignalTimeUpdate, func(e Event) {
		// Handlers may emit further signals.
		hub.Emit(Event{Signal: SignalSeeked, Time: e.Time})
	})

	hub.Emit(Event{Signal: SignalTimeUpdate, Time: 3})

	if seeked != 1 {
		t.Errorf("nested emit delivered %d times, expected 1", seeked)
	}
}

func TestHubCancelInsideHandler(t *testing.T) {
	var hub Hub
	calls := 0

	var cancel func()
	cancel = hub.Subscribe(SignalSeeked, func(Event) {
		calls++
		cancel()
	})

	hub.Emit(Event{Signal: SignalSeeked})
	hub.Emit(Event{Signal: SignalSeeked})

	if calls != 1 {
		t.Errorf("one-shot handler ran %d times", calls)
	}
}
