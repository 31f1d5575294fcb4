package ecs

import "github.com/swarmfall/game/internal/core/event"

// World is the top-level ECS container. It owns the entity manager, the query
// manager, and a deferred destruction queue flushed by CleanupSystem each tick.
type World struct {
	entities     *EntityManager
	queries      *QueryManager
	destroyQueue []*Entity
}

func NewWorld(bus *event.Bus) *World {
	entities := NewEntityManager(bus)
	return &World{
		entities:     entities,
		queries:      NewQueryManager(entities),
		destroyQueue: make([]*Entity, 0, 64),
	}
}

func (w *World) Entities() *EntityManager { return w.entities }
func (w *World) Queries() *QueryManager   { return w.queries }
func (w *World) Bus() *event.Bus          { return w.entities.Bus() }

// MarkForDestruction deactivates e and queues it for end-of-tick cleanup.
// Deactivation takes effect immediately so the rest of the tick skips it.
func (w *World) MarkForDestruction(e *Entity) {
	if !w.entities.Contains(e) {
		return
	}
	e.SetActive(false)
	w.destroyQueue = append(w.destroyQueue, e)
}

// PendingDestruction returns the number of queued entities.
func (w *World) PendingDestruction() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued entities and returns how many were
// still registered. Duplicates are harmless since Destroy ignores unregistered
// entities. Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for i := 0; i < len(w.destroyQueue); i++ {
		e := w.destroyQueue[i]
		if w.entities.Contains(e) {
			w.entities.Destroy(e)
			n++
		}
		w.destroyQueue[i] = nil
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}

// Close tears down the query manager's subscriptions and destroys every entity.
func (w *World) Close() {
	w.destroyQueue = w.destroyQueue[:0]
	w.entities.Clear()
	w.queries.Close()
}
