package ecs

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
// Index 0 is reserved, so the zero EntityID never names an entity.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// IDPool manages entity id allocation with generational indices and a free list.
// An id stays alive across remove/add cycles and is retired only by Destroy.
type IDPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewIDPool() *IDPool {
	p := &IDPool{
		generations: make([]uint32, 1, 1024),
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1,
	}
	return p
}

func (p *IDPool) Create() EntityID {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewEntityID(idx, p.generations[idx])
}

func (p *IDPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *IDPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return // already destroyed (stale reference)
	}
	idx := id.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}

// Entity is an identity carrying at most one component per Kind and a set of
// tags. Entities are built through EntityManager.NewEntity or Create.
type Entity struct {
	id         EntityID
	active     bool
	tags       TagSet
	components [kindCount]Component

	// set while registered so tag and state changes reach the index
	mgr *EntityManager
	// bumped on every registration; a pooled entity gets a new epoch per spawn
	epoch uint32
}

func (e *Entity) ID() EntityID      { return e.id }
func (e *Entity) IsActive() bool    { return e.active }
func (e *Entity) Tags() TagSet      { return e.tags }
func (e *Entity) HasTag(t Tag) bool { return e.tags.Has(t) }

// Epoch counts how many times the entity has been registered. It tells a
// recycled pool entity apart from its previous spawn.
func (e *Entity) Epoch() uint32 { return e.epoch }

// Registered reports whether the entity is currently held by an EntityManager.
func (e *Entity) Registered() bool { return e.mgr != nil }

// SetActive toggles whether systems process the entity.
func (e *Entity) SetActive(active bool) {
	if e.active == active {
		return
	}
	e.active = active
	if e.mgr != nil {
		e.mgr.changed(e)
	}
}

// AddTag labels the entity. On a registered entity the tag index follows.
func (e *Entity) AddTag(t Tag) *Entity {
	if e.mgr != nil {
		e.mgr.RegisterTag(e, t)
		return e
	}
	e.tags = e.tags.With(t)
	return e
}

func (e *Entity) RemoveTag(t Tag) *Entity {
	if e.mgr != nil {
		e.mgr.UnregisterTag(e, t)
		return e
	}
	e.tags = e.tags.Without(t)
	return e
}

// Add attaches c, replacing any component of the same kind.
func (e *Entity) Add(c Component) *Entity {
	if c == nil || !c.Kind().Valid() {
		return e
	}
	e.components[c.Kind()] = c
	if e.mgr != nil {
		e.mgr.changed(e)
	}
	return e
}

// Remove detaches and returns the component of kind k, or nil.
func (e *Entity) Remove(k Kind) Component {
	if !k.Valid() {
		return nil
	}
	c := e.components[k]
	if c == nil {
		return nil
	}
	e.components[k] = nil
	if e.mgr != nil {
		e.mgr.changed(e)
	}
	return c
}

// Get returns the component of kind k, or nil.
func (e *Entity) Get(k Kind) Component {
	if !k.Valid() {
		return nil
	}
	return e.components[k]
}

// Has reports whether the entity holds every listed kind.
func (e *Entity) Has(kinds ...Kind) bool {
	for _, k := range kinds {
		if !k.Valid() || e.components[k] == nil {
			return false
		}
	}
	return true
}

// Dispose releases component resources and detaches every component.
func (e *Entity) Dispose() {
	for i, c := range e.components {
		if c == nil {
			continue
		}
		if d, ok := c.(Disposer); ok {
			d.Dispose()
		}
		e.components[i] = nil
	}
	e.active = false
}

// Get returns e's component of kind k as T.
func Get[T Component](e *Entity, k Kind) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	c, ok := e.Get(k).(T)
	if !ok {
		return zero, false
	}
	return c, true
}
