package event

import "reflect"

type handler struct {
	id uint64
	fn func(any)
}

// Bus is a typed in-process event bus with two delivery modes.
//
// Publish delivers synchronously to every subscriber before returning; entity
// lifecycle and collision events use it so that observers see them within the
// same frame. Emit queues into a double buffer: events emitted in tick N are
// delivered in tick N+1 when EventDispatchSystem calls SwapBuffers and
// DispatchAll at tick start.
//
// A Bus belongs to the game loop goroutine; nothing in it is locked.
type Bus struct {
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]handler
	nextID   uint64
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]handler),
	}
}

// Subscription identifies one registered handler. The zero value is valid and
// cancelling it does nothing.
type Subscription struct {
	bus *Bus
	key reflect.Type
	id  uint64
}

// Cancel detaches the handler. Safe to call more than once and from inside
// the handler itself.
func (s Subscription) Cancel() {
	if s.bus == nil {
		return
	}
	s.bus.unsubscribe(s.key, s.id)
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Subscribe registers a typed handler for events of type T.
// Handler slices are copy-on-write so delivery in progress keeps iterating
// the slice it started with.
func Subscribe[T any](b *Bus, fn func(T)) Subscription {
	t := typeKey[T]()
	b.nextID++
	hs := b.handlers[t]
	next := make([]handler, len(hs), len(hs)+1)
	copy(next, hs)
	b.handlers[t] = append(next, handler{
		id: b.nextID,
		fn: func(ev any) { fn(ev.(T)) },
	})
	return Subscription{bus: b, key: t, id: b.nextID}
}

func (b *Bus) unsubscribe(t reflect.Type, id uint64) {
	hs := b.handlers[t]
	next := make([]handler, 0, len(hs))
	for _, h := range hs {
		if h.id != id {
			next = append(next, h)
		}
	}
	if len(next) == 0 {
		delete(b.handlers, t)
		return
	}
	b.handlers[t] = next
}

// Publish delivers event to all current subscribers of T immediately.
func Publish[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	b.deliver(typeKey[T](), event)
}

// Emit queues an event into the back buffer (will be readable next tick).
func Emit[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	t := typeKey[T]()
	b.back[t] = append(b.back[t], event)
}

// HandlerCount reports how many handlers are subscribed to T.
func HandlerCount[T any](b *Bus) int {
	return len(b.handlers[typeKey[T]()])
}

// Pending returns the number of events queued for the next dispatch.
func (b *Bus) Pending() int {
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	for t, events := range b.front {
		for _, ev := range events {
			b.deliver(t, ev)
		}
		b.front[t] = events[:0]
	}
}

func (b *Bus) deliver(t reflect.Type, ev any) {
	for _, h := range b.handlers[t] {
		h.fn(ev)
	}
}
