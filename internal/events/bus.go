// Package events provides the typed publish/subscribe channel every player
// component emits through. Delivery is synchronous; a panicking handler is
// isolated and reported without aborting delivery to the remaining handlers
// or the caller of Emit.
package events

import (
	"log"
	"reflect"
	"sync"
)

type Handler func(args ...any)

type entry struct {
	id uint64
	fn Handler
}

type Bus struct {
	mu     sync.Mutex
	nextID uint64
	on     map[string][]entry
	once   map[string][]entry
}

func NewBus() *Bus {
	return &Bus{
		on:   make(map[string][]entry),
		once: make(map[string][]entry),
	}
}

// On registers a durable handler and returns its unsubscribe func. Handlers
// for the same event are invoked in insertion order.
func (b *Bus) On(event string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.on[event] = append(b.on[event], entry{id: id, fn: h})
	return func() { b.remove(event, id) }
}

// Once registers a handler invoked at most once. The handler is removed
// before invocation, so a re-entrant Emit from inside it cannot trigger it
// again.
func (b *Bus) Once(event string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.once[event] = append(b.once[event], entry{id: id, fn: h})
	return func() { b.remove(event, id) }
}

// Off removes every registration of h for event. Handlers are identified by
// function identity; prefer the unsubscribe func returned by On/Once when the
// same function literal is registered more than once.
func (b *Bus) Off(event string, h Handler) {
	ptr := reflect.ValueOf(h).Pointer()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.on[event] = filterOut(b.on[event], ptr)
	b.once[event] = filterOut(b.once[event], ptr)
}

func filterOut(list []entry, ptr uintptr) []entry {
	out := list[:0]
	for _, e := range list {
		if reflect.ValueOf(e.fn).Pointer() != ptr {
			out = append(out, e)
		}
	}
	return out
}

func (b *Bus) remove(event string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range []map[string][]entry{b.on, b.once} {
		list := m[event]
		for i, e := range list {
			if e.id == id {
				m[event] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers the event to durable handlers, then to once handlers. The
// relative order of the two groups is unspecified by contract; within each
// group insertion order is preserved.
func (b *Bus) Emit(event string, args ...any) {
	b.mu.Lock()
	durable := make([]entry, len(b.on[event]))
	copy(durable, b.on[event])
	oneshot := b.once[event]
	delete(b.once, event)
	b.mu.Unlock()

	for _, e := range durable {
		dispatch(event, e.fn, args)
	}
	for _, e := range oneshot {
		dispatch(event, e.fn, args)
	}
}

func dispatch(event string, h Handler, args []any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("events: handler for %q panicked: %v", event, r)
		}
	}()
	h(args...)
}

// RemoveAll drops every handler for event, or every handler on the bus when
// no event is given.
func (b *Bus) RemoveAll(event ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(event) == 0 {
		b.on = make(map[string][]entry)
		b.once = make(map[string][]entry)
		return
	}
	for _, ev := range event {
		delete(b.on, ev)
		delete(b.once, ev)
	}
}

func (b *Bus) ListenerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.on[event]) + len(b.once[event])
}
