// Package pool provides a fixed-capacity free-list allocator for high-churn
// objects such as projectiles, mines and summons.
package pool

import (
	"github.com/swarmfall/game/internal/core/event"
	"go.uber.org/zap"
)

// Config sizes a pool. Initial instances are built eagerly; growth up to Max
// happens on demand. Max below Initial is raised to Initial.
type Config struct {
	Name    string
	Initial int
	Max     int
}

// ObjectPool recycles instances of T. Every instance it created is in exactly
// one of the free list or the active list. The pool tracks liveness only:
// callers reset instance content before reuse.
// Accessed only from the game loop goroutine, so there are no locks.
type ObjectPool[T comparable] struct {
	name    string
	factory func() T
	max     int

	free   []T
	active []T
	index  map[T]int // position in active

	bus *event.Bus
	log *zap.Logger
}

// New builds a pool and pre-allocates cfg.Initial instances. bus may be nil;
// when set, exhaustion is emitted as event.PoolExhausted for the next tick.
func New[T comparable](cfg Config, factory func() T, bus *event.Bus, log *zap.Logger) *ObjectPool[T] {
	if cfg.Initial < 0 {
		cfg.Initial = 0
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &ObjectPool[T]{
		name:    cfg.Name,
		factory: factory,
		max:     cfg.Max,
		free:    make([]T, 0, cfg.Max),
		active:  make([]T, 0, cfg.Max),
		index:   make(map[T]int, cfg.Max),
		bus:     bus,
		log:     log,
	}
	for i := 0; i < cfg.Initial; i++ {
		p.free = append(p.free, factory())
	}
	return p
}

// Get returns a free instance, building one if none is free and the pool is
// below Max. At Max it logs a warning and returns false.
func (p *ObjectPool[T]) Get() (T, bool) {
	var obj T
	switch {
	case len(p.free) > 0:
		last := len(p.free) - 1
		obj = p.free[last]
		var zero T
		p.free[last] = zero
		p.free = p.free[:last]
	case len(p.active) < p.max:
		obj = p.factory()
	default:
		p.log.Warn("pool exhausted",
			zap.String("pool", p.name),
			zap.Int("max", p.max))
		event.Emit(p.bus, event.PoolExhausted{Pool: p.name, Max: p.max})
		var zero T
		return zero, false
	}
	p.index[obj] = len(p.active)
	p.active = append(p.active, obj)
	return obj, true
}

// Release moves obj from active back to free. Objects that are not active in
// this pool are ignored, which also makes double release harmless.
func (p *ObjectPool[T]) Release(obj T) {
	i, ok := p.index[obj]
	if !ok {
		return
	}
	last := len(p.active) - 1
	if i != last {
		moved := p.active[last]
		p.active[i] = moved
		p.index[moved] = i
	}
	var zero T
	p.active[last] = zero
	p.active = p.active[:last]
	delete(p.index, obj)
	p.free = append(p.free, obj)
}

// ReleaseAll returns every active instance to the free list.
func (p *ObjectPool[T]) ReleaseAll() {
	var zero T
	for i, obj := range p.active {
		p.free = append(p.free, obj)
		p.active[i] = zero
	}
	p.active = p.active[:0]
	clear(p.index)
}

// ActiveObjects returns a snapshot of the instances currently in use.
func (p *ObjectPool[T]) ActiveObjects() []T {
	out := make([]T, len(p.active))
	copy(out, p.active)
	return out
}

// Contains reports whether obj is currently active in this pool.
func (p *ObjectPool[T]) Contains(obj T) bool {
	_, ok := p.index[obj]
	return ok
}

func (p *ObjectPool[T]) Name() string     { return p.name }
func (p *ObjectPool[T]) Max() int         { return p.max }
func (p *ObjectPool[T]) ActiveCount() int { return len(p.active) }
func (p *ObjectPool[T]) FreeCount() int   { return len(p.free) }
