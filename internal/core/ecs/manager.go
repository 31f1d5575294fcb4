package ecs

import (
	"sort"

	"github.com/swarmfall/game/internal/core/event"
)

// EntityManager owns the canonical entity table and a tag→entity secondary
// index. Every entity in the tag index is also in the primary table.
//
// All mutating operations are silent no-ops on nil or unregistered entities.
// Lifecycle events are published synchronously on the bus.
type EntityManager struct {
	ids  *IDPool
	bus  *event.Bus
	byID map[EntityID]int // position in list
	list []*Entity
	tags map[Tag]map[EntityID]*Entity
}

// NewEntityManager creates a manager publishing on bus. A nil bus gets a
// private one so query invalidation still works.
func NewEntityManager(bus *event.Bus) *EntityManager {
	if bus == nil {
		bus = event.NewBus()
	}
	return &EntityManager{
		ids:  NewIDPool(),
		bus:  bus,
		byID: make(map[EntityID]int, 256),
		list: make([]*Entity, 0, 256),
		tags: make(map[Tag]map[EntityID]*Entity),
	}
}

func (m *EntityManager) Bus() *event.Bus { return m.bus }

// NewEntity allocates an active, unregistered entity with a fresh id.
// Pools use it to pre-build instances that are registered later with Add.
func (m *EntityManager) NewEntity() *Entity {
	return &Entity{id: m.ids.Create(), active: true}
}

// Create builds an entity with build, registers it and publishes EntityCreated.
func (m *EntityManager) Create(build func(*Entity)) *Entity {
	e := m.NewEntity()
	if build != nil {
		build(e)
	}
	m.register(e)
	event.Publish(m.bus, EntityCreated{Entity: e})
	return e
}

// Add registers a pre-built entity and publishes EntityAdded. Returns nil if
// the entity's id has been retired by Destroy.
func (m *EntityManager) Add(e *Entity) *Entity {
	if e == nil || !m.ids.Alive(e.id) {
		return nil
	}
	if m.Contains(e) {
		return e
	}
	m.register(e)
	event.Publish(m.bus, EntityAdded{Entity: e})
	return e
}

// Destroy unregisters e, publishes EntityDestroyed, disposes it and retires
// its id.
func (m *EntityManager) Destroy(e *Entity) {
	if !m.Contains(e) {
		return
	}
	m.unregister(e)
	event.Publish(m.bus, EntityDestroyed{Entity: e})
	e.Dispose()
	m.ids.Destroy(e.id)
}

// Remove unregisters e without disposing it, for entities going back to a pool.
func (m *EntityManager) Remove(e *Entity) {
	if !m.Contains(e) {
		return
	}
	m.unregister(e)
	event.Publish(m.bus, EntityRemoved{Entity: e})
}

// Clear destroys every registered entity.
func (m *EntityManager) Clear() {
	for len(m.list) > 0 {
		m.Destroy(m.list[len(m.list)-1])
	}
}

// Contains reports whether e is the entity registered under its id.
func (m *EntityManager) Contains(e *Entity) bool {
	if e == nil {
		return false
	}
	i, ok := m.byID[e.id]
	return ok && m.list[i] == e
}

func (m *EntityManager) GetByID(id EntityID) *Entity {
	i, ok := m.byID[id]
	if !ok {
		return nil
	}
	return m.list[i]
}

// GetByTag returns the registered entities carrying t, ordered by id.
func (m *EntityManager) GetByTag(t Tag) []*Entity {
	set := m.tags[t]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Entity, 0, len(set))
	for _, e := range set {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (m *EntityManager) GetCountByTag(t Tag) int { return len(m.tags[t]) }

// GetAll returns a snapshot of every registered entity, active or not.
func (m *EntityManager) GetAll() []*Entity {
	out := make([]*Entity, len(m.list))
	copy(out, m.list)
	return out
}

func (m *EntityManager) Count() int { return len(m.list) }

// GetWithComponents scans every registered entity and returns the active ones
// holding all of kinds. There is no per-kind index; entity counts stay in the
// low hundreds.
func (m *EntityManager) GetWithComponents(kinds ...Kind) []*Entity {
	out := make([]*Entity, 0, len(m.list))
	for _, e := range m.list {
		if e.active && e.Has(kinds...) {
			out = append(out, e)
		}
	}
	return out
}

// IndexedTags lists the tags that currently have at least one entity in the
// index, in ascending order.
func (m *EntityManager) IndexedTags() []Tag {
	out := make([]Tag, 0, len(m.tags))
	for t := range m.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RegisterTag adds t to a registered entity and indexes it.
func (m *EntityManager) RegisterTag(e *Entity, t Tag) {
	if !m.Contains(e) || !t.Valid() {
		return
	}
	e.tags = e.tags.With(t)
	m.indexTag(e, t)
}

// UnregisterTag removes t from a registered entity and its index entry.
func (m *EntityManager) UnregisterTag(e *Entity, t Tag) {
	if !m.Contains(e) || !e.tags.Has(t) {
		return
	}
	e.tags = e.tags.Without(t)
	m.unindexTag(e, t)
}

func (m *EntityManager) register(e *Entity) {
	m.byID[e.id] = len(m.list)
	m.list = append(m.list, e)
	e.mgr = m
	e.epoch++
	e.tags.Each(func(t Tag) { m.indexTag(e, t) })
}

func (m *EntityManager) unregister(e *Entity) {
	e.tags.Each(func(t Tag) { m.unindexTag(e, t) })

	i := m.byID[e.id]
	last := len(m.list) - 1
	if i != last {
		moved := m.list[last]
		m.list[i] = moved
		m.byID[moved.id] = i
	}
	m.list[last] = nil
	m.list = m.list[:last]
	delete(m.byID, e.id)
	e.mgr = nil
}

func (m *EntityManager) indexTag(e *Entity, t Tag) {
	set := m.tags[t]
	if set == nil {
		set = make(map[EntityID]*Entity)
		m.tags[t] = set
	}
	set[e.id] = e
}

// unindexTag drops the tag key entirely once its last entity leaves.
func (m *EntityManager) unindexTag(e *Entity, t Tag) {
	set := m.tags[t]
	if set == nil {
		return
	}
	delete(set, e.id)
	if len(set) == 0 {
		delete(m.tags, t)
	}
}

// changed is called by registered entities whose component set or active
// flag moved, so cached queries get invalidated.
func (m *EntityManager) changed(e *Entity) {
	event.Publish(m.bus, EntityChanged{Entity: e})
}
