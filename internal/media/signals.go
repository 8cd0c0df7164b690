package media

import "sync"

type handlerEntry struct {
	id int
	fn func(Event)
}

// Hub dispatches source signals to registered handlers. Handlers run
// synchronously in registration order on the emitting goroutine; emitting
// from inside a handler is allowed.
type Hub struct {
	mu       sync.Mutex
	nextID   int
	handlers map[Signal][]handlerEntry
}

// Subscribe registers fn for sig and returns a cancel function.
func (h *Hub) Subscribe(sig Signal, fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.handlers == nil {
		h.handlers = make(map[Signal][]handlerEntry)
	}

	id := h.nextID
	h.nextID++
	h.handlers[sig] = append(h.handlers[sig], handlerEntry{id: id, fn: fn})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		entries := h.handlers[sig]
		for i, e := range entries {
			if e.id == id {
				h.handlers[sig] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers e to every handler registered for its signal. The handler
// set is snapshotted first, so handlers may subscribe or cancel freely.
func (h *Hub) Emit(e Event) {
	h.mu.Lock()
	entries := h.handlers[e.Signal]
	fns := make([]func(Event), len(entries))
	for i, entry := range entries {
		fns[i] = entry.fn
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
