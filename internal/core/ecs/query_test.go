package ecs

import (
	"testing"

	"github.com/swarmfall/game/internal/core/event"
)

func sameEntities(a, b []*Entity) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueryLazyRecompute(t *testing.T) {
	m := NewEntityManager(nil)
	qm := NewQueryManager(m)
	q := qm.CreateQuery(KindTransform, KindVelocity)

	if !q.IsDirty() {
		t.Fatal("new query should start dirty")
	}
	if q.Len() != 0 {
		t.Fatal("expected empty results")
	}
	if q.IsDirty() {
		t.Fatal("read should clear dirty flag")
	}

	e := m.Create(func(e *Entity) { e.Add(&posComp{}).Add(&velComp{}) })
	if !q.IsDirty() {
		t.Fatal("create should invalidate")
	}
	res := q.Results()
	if len(res) != 1 || res[0] != e {
		t.Fatalf("expected new entity in results, got %d", len(res))
	}
}

func TestQueryCacheCoherence(t *testing.T) {
	m := NewEntityManager(nil)
	qm := NewQueryManager(m)
	q := qm.CreateQuery(KindTransform)

	var live []*Entity
	for step := 0; step < 40; step++ {
		switch {
		case step%5 == 4 && len(live) > 0:
			m.Destroy(live[0])
			live = live[1:]
		case step%7 == 6 && len(live) > 0:
			m.Remove(live[len(live)-1])
			m.Add(live[len(live)-1])
		case step%3 == 0:
			live = append(live, m.Create(func(e *Entity) { e.Add(&posComp{}) }))
		default:
			m.Create(func(e *Entity) { e.Add(&velComp{}) })
		}
		if step%2 == 0 {
			continue // let invalidations pile up between reads
		}
		if !sameEntities(q.Results(), m.GetWithComponents(KindTransform)) {
			t.Fatalf("step %d: cached results diverged from a fresh scan", step)
		}
	}
}

func TestQueryTracksActiveAndComponentChanges(t *testing.T) {
	m := NewEntityManager(nil)
	qm := NewQueryManager(m)
	q := qm.CreateQuery(KindTransform)
	e := m.Create(func(e *Entity) { e.Add(&posComp{}) })

	if q.Len() != 1 {
		t.Fatal("expected entity in query")
	}
	e.SetActive(false)
	if q.Len() != 0 {
		t.Fatal("deactivated entity should drop out")
	}
	e.SetActive(true)
	e.Remove(KindTransform)
	if q.Len() != 0 {
		t.Fatal("entity without the component should drop out")
	}
}

func TestInvalidateIsIdempotent(t *testing.T) {
	m := NewEntityManager(nil)
	qm := NewQueryManager(m)
	q := qm.CreateQuery(KindTransform)
	m.Create(func(e *Entity) { e.Add(&posComp{}) })

	first := q.Results()
	q.Invalidate()
	q.Invalidate()
	second := q.Results()

	if !sameEntities(first, second) {
		t.Fatal("double invalidate changed observable results")
	}
	if q.IsDirty() {
		t.Fatal("still dirty after read")
	}
}

func TestQueryHelpers(t *testing.T) {
	m := NewEntityManager(nil)
	qm := NewQueryManager(m)
	q := qm.CreateQuery(KindTransform)
	for i := 0; i < 4; i++ {
		x := float64(i)
		m.Create(func(e *Entity) { e.Add(&posComp{x: x}) })
	}

	xs := Map(q, func(e *Entity) float64 {
		p, _ := Get[*posComp](e, KindTransform)
		return p.x
	})
	if len(xs) != 4 {
		t.Fatalf("Map returned %d values", len(xs))
	}

	far := q.Filter(func(e *Entity) bool {
		p, _ := Get[*posComp](e, KindTransform)
		return p.x >= 2
	})
	if len(far) != 2 {
		t.Fatalf("Filter returned %d, want 2", len(far))
	}

	if q.Find(func(*Entity) bool { return false }) != nil {
		t.Fatal("Find should return nil when nothing matches")
	}

	visited := 0
	q.ForEach(func(*Entity) { visited++ })
	if visited != 4 || q.IsDirty() {
		t.Fatalf("ForEach visited %d; helpers must not dirty the cache", visited)
	}
}

func TestRemoveQueryStopsInvalidation(t *testing.T) {
	bus := event.NewBus()
	m := NewEntityManager(bus)
	qm := NewQueryManager(m)
	q := qm.CreateQuery(KindTransform)
	kept := qm.CreateQuery(KindTransform)
	q.Results()
	kept.Results()

	qm.RemoveQuery(q)
	qm.RemoveQuery(q) // unknown now, ignored
	m.Create(func(e *Entity) { e.Add(&posComp{}) })

	if qm.Len() != 1 {
		t.Fatalf("expected 1 tracked query, got %d", qm.Len())
	}
	if q.IsDirty() || q.Results() != nil {
		t.Fatal("removed query should be inert")
	}
	if !kept.IsDirty() {
		t.Fatal("remaining query should still be invalidated")
	}

	qm.Close()
	if n := event.HandlerCount[EntityCreated](bus); n != 0 {
		t.Fatalf("Close left %d lifecycle subscriptions", n)
	}
}
