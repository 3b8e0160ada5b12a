package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered, typed publish/subscribe bus. Events emitted in
// tick N are delivered when the dispatch system flushes at the end of tick N,
// in the order they were emitted. Events emitted by handlers during a flush
// are delivered by the next flush.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    []any
	back     []any
	handlers map[reflect.Type][]subscription
	nextSub  uint64
}

type subscription struct {
	id uint64
	fn func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]any, 0, 32),
		back:     make([]any, 0, 32),
		handlers: make(map[reflect.Type][]subscription),
	}
}

// Emit queues an event into the back buffer. A nil bus drops the event.
func Emit[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	b.back = append(b.back, event)
}

// Subscribe registers a typed handler for events of type T. The returned
// function removes the handler; calling it more than once is harmless.
func Subscribe[T any](b *Bus, fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.nextSub++
	id := b.nextSub
	b.handlers[t] = append(b.handlers[t], subscription{
		id: id,
		fn: func(ev any) { fn(ev.(T)) },
	})
	return func() { b.unsubscribe(t, id) }
}

func (b *Bus) unsubscribe(t reflect.Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[t]
	for i, s := range subs {
		if s.id == id {
			// Copy so an in-flight dispatch keeps iterating its own snapshot.
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			b.handlers[t] = next
			return
		}
	}
}

// Pending returns the number of events waiting for the next flush.
func (b *Bus) Pending() int { return len(b.back) }

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers all front-buffer events to their subscribed handlers,
// in emission order, then in subscription order per event.
func (b *Bus) DispatchAll() {
	for i, ev := range b.front {
		b.mu.Lock()
		subs := b.handlers[reflect.TypeOf(ev)]
		b.mu.Unlock()
		for _, s := range subs {
			s.fn(ev)
		}
		b.front[i] = nil
	}
	b.front = b.front[:0]
}

// Flush swaps the buffers and dispatches everything emitted so far.
func (b *Bus) Flush() {
	b.SwapBuffers()
	b.DispatchAll()
}
