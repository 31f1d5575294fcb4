package system

import (
	"fmt"
	"time"

	"github.com/swarmfall/game/internal/component"
	"github.com/swarmfall/game/internal/core/ecs"
	"github.com/swarmfall/game/internal/core/event"
	coresys "github.com/swarmfall/game/internal/core/system"
	"go.uber.org/zap"
)

// Collision pairs two overlapping entities for the current frame only.
type Collision struct {
	EntityA   *ecs.Entity
	EntityB   *ecs.Entity
	ColliderA component.Collider
	ColliderB component.Collider
}

func (c Collision) swapped() Collision {
	return Collision{EntityA: c.EntityB, EntityB: c.EntityA, ColliderA: c.ColliderB, ColliderB: c.ColliderA}
}

// CollisionDetected is the broadcast form of every collision, published
// synchronously during CollisionSystem.Update.
type CollisionDetected Collision

func (CollisionDetected) Topic() string { return event.TopicCollisionDetected }

// CollisionCallback receives entities ordered to match the tags it was
// registered with.
type CollisionCallback func(a, b *ecs.Entity, ca, cb component.Collider)

// CallbackID identifies a registered callback for unregistration.
type CallbackID uint64

// pairKey is an order-independent tag pair: lo <= hi.
type pairKey struct{ lo, hi ecs.Tag }

func makePairKey(a, b ecs.Tag) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type callbackEntry struct {
	id   CallbackID
	tagA ecs.Tag
	tagB ecs.Tag
	fn   CollisionCallback
}

type body struct {
	e     *ecs.Entity
	col   component.Collider
	epoch uint32
}

// live reports whether b still refers to the spawn captured in the snapshot.
func (b body) live() bool { return b.e.IsActive() && b.e.Epoch() == b.epoch }

// CollisionSystem tests every unordered pair of active entities holding a
// Transform and a Collider once per tick. The pass is O(n²) over that set,
// which is fine at a few hundred colliders; past max_entities_warn it logs
// so a spatial partition can be added deliberately.
//
// Each overlap is recorded for the frame, published as CollisionDetected and
// routed to the callbacks registered for any tag pair the two entities carry.
type CollisionSystem struct {
	query *ecs.Query
	bus   *event.Bus
	log   *zap.Logger

	callbacks map[pairKey][]callbackEntry
	nextID    CallbackID
	isolate   bool

	warnAt int
	warned bool

	bodies     []body
	seen       []pairKey
	collisions []Collision
}

func NewCollisionSystem(queries *ecs.QueryManager, bus *event.Bus, log *zap.Logger) *CollisionSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CollisionSystem{
		query:     queries.CreateQuery(ecs.KindTransform, ecs.KindCollider),
		bus:       bus,
		log:       log,
		callbacks: make(map[pairKey][]callbackEntry),
		isolate:   true,
	}
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseCollision }

// SetIsolation controls whether a panicking callback is recovered and logged
// (true, the default) or allowed to abort the frame.
func (s *CollisionSystem) SetIsolation(on bool) { s.isolate = on }

// SetEntityWarning logs once when the collider count first exceeds n.
// Zero disables the warning.
func (s *CollisionSystem) SetEntityWarning(n int) { s.warnAt = n }

// RegisterCollisionCallback adds fn for the unordered pair (tagA, tagB).
// Several callbacks may share a pair; all fire in registration order.
func (s *CollisionSystem) RegisterCollisionCallback(tagA, tagB ecs.Tag, fn CollisionCallback) CallbackID {
	if fn == nil || !tagA.Valid() || !tagB.Valid() {
		return 0
	}
	s.nextID++
	key := makePairKey(tagA, tagB)
	entries := s.callbacks[key]
	next := make([]callbackEntry, len(entries), len(entries)+1)
	copy(next, entries)
	s.callbacks[key] = append(next, callbackEntry{id: s.nextID, tagA: tagA, tagB: tagB, fn: fn})
	return s.nextID
}

// UnregisterCollisionCallback removes one callback. The pair key is deleted
// with its last callback.
func (s *CollisionSystem) UnregisterCollisionCallback(tagA, tagB ecs.Tag, id CallbackID) {
	key := makePairKey(tagA, tagB)
	entries, ok := s.callbacks[key]
	if !ok {
		return
	}
	next := make([]callbackEntry, 0, len(entries))
	for _, c := range entries {
		if c.id != id {
			next = append(next, c)
		}
	}
	if len(next) == 0 {
		delete(s.callbacks, key)
		return
	}
	s.callbacks[key] = next
}

// CallbackCount returns the callbacks registered for the unordered pair.
func (s *CollisionSystem) CallbackCount(tagA, tagB ecs.Tag) int {
	return len(s.callbacks[makePairKey(tagA, tagB)])
}

// CallbackPairs returns the number of tag pairs with at least one callback.
func (s *CollisionSystem) CallbackPairs() int { return len(s.callbacks) }

// Update rebuilds the frame's collision list. The entity set and collider
// positions are captured once at the top; entities created during dispatch
// are not tested until the next tick, and entities deactivated during
// dispatch stop pairing immediately. A pooled entity despawned and spawned
// again mid-pass counts as new: its old snapshot entry stops pairing.
func (s *CollisionSystem) Update(_ time.Duration) {
	for i := range s.collisions {
		s.collisions[i] = Collision{}
	}
	s.collisions = s.collisions[:0]

	s.bodies = s.bodies[:0]
	for _, e := range s.query.Results() {
		col, ok := ecs.Get[component.Collider](e, ecs.KindCollider)
		if !ok {
			continue
		}
		tr, ok := ecs.Get[*component.Transform](e, ecs.KindTransform)
		if !ok {
			continue
		}
		col.Sync(tr)
		s.bodies = append(s.bodies, body{e: e, col: col, epoch: e.Epoch()})
	}
	s.checkScale(len(s.bodies))

	for i := 0; i < len(s.bodies); i++ {
		a := s.bodies[i]
		for j := i + 1; j < len(s.bodies); j++ {
			if !a.live() {
				break
			}
			b := s.bodies[j]
			if !b.live() {
				continue
			}
			if !a.col.IsCollidingWith(b.col) {
				continue
			}
			c := Collision{EntityA: a.e, EntityB: b.e, ColliderA: a.col, ColliderB: b.col}
			s.collisions = append(s.collisions, c)
			event.Publish(s.bus, CollisionDetected(c))
			s.dispatch(c)
		}
	}

	for i := range s.bodies {
		s.bodies[i] = body{}
	}
}

func (s *CollisionSystem) checkScale(n int) {
	if s.warnAt <= 0 {
		return
	}
	if n <= s.warnAt {
		s.warned = false
		return
	}
	if !s.warned {
		s.warned = true
		s.log.Warn("collider count above pairwise ceiling",
			zap.Int("colliders", n),
			zap.Int("ceiling", s.warnAt))
	}
}

// dispatch fires every callback whose registered pair matches a tag of A and
// a tag of B. Each pair key fires at most once per collision, even when both
// entities carry both tags.
func (s *CollisionSystem) dispatch(c Collision) {
	if len(s.callbacks) == 0 {
		return
	}
	s.seen = s.seen[:0]
	tagsA, tagsB := c.EntityA.Tags(), c.EntityB.Tags()
	tagsA.Each(func(ta ecs.Tag) {
		tagsB.Each(func(tb ecs.Tag) {
			key := makePairKey(ta, tb)
			entries, ok := s.callbacks[key]
			if !ok {
				return
			}
			for _, k := range s.seen {
				if k == key {
					return
				}
			}
			s.seen = append(s.seen, key)
			for _, entry := range entries {
				s.invoke(entry, c)
			}
		})
	})
}

// invoke calls entry with arguments ordered to its registered (tagA, tagB).
func (s *CollisionSystem) invoke(entry callbackEntry, c Collision) {
	if !(c.EntityA.HasTag(entry.tagA) && c.EntityB.HasTag(entry.tagB)) {
		c = c.swapped()
	}
	if s.isolate {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("collision callback panicked",
					zap.Stringer("tag_a", entry.tagA),
					zap.Stringer("tag_b", entry.tagB),
					zap.Uint64("entity_a", uint64(c.EntityA.ID())),
					zap.Uint64("entity_b", uint64(c.EntityB.ID())),
					zap.String("panic", fmt.Sprint(r)))
			}
		}()
	}
	entry.fn(c.EntityA, c.EntityB, c.ColliderA, c.ColliderB)
}

// GetAllCollisions returns this frame's collisions. The slice is reused by
// the next Update.
func (s *CollisionSystem) GetAllCollisions() []Collision { return s.collisions }

// GetCollisionsForEntity returns this frame's collisions involving e.
func (s *CollisionSystem) GetCollisionsForEntity(e *ecs.Entity) []Collision {
	var out []Collision
	for _, c := range s.collisions {
		if c.EntityA == e || c.EntityB == e {
			out = append(out, c)
		}
	}
	return out
}

// GetCollisionsByTags returns this frame's collisions between an entity
// tagged tagA and one tagged tagB, oriented so EntityA carries tagA.
func (s *CollisionSystem) GetCollisionsByTags(tagA, tagB ecs.Tag) []Collision {
	var out []Collision
	for _, c := range s.collisions {
		switch {
		case c.EntityA.HasTag(tagA) && c.EntityB.HasTag(tagB):
			out = append(out, c)
		case c.EntityB.HasTag(tagA) && c.EntityA.HasTag(tagB):
			out = append(out, c.swapped())
		}
	}
	return out
}
