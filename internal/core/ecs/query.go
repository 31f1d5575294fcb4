package ecs

import "github.com/swarmfall/game/internal/core/event"

// Query is a cached view over the active entities holding a fixed set of
// component kinds. Invalidation only sets a flag; the scan runs on the next
// read, so several lifecycle events in one frame cost a single recompute.
//
// The slice returned by Results is shared and must not be modified. It stays
// valid after later recomputes, which allocate a new slice.
type Query struct {
	mgr     *EntityManager
	kinds   []Kind
	results []*Entity
	dirty   bool
}

// Results returns the cached entities, recomputing first if dirty.
// A query detached by QueryManager.RemoveQuery returns nil.
func (q *Query) Results() []*Entity {
	if q.mgr == nil {
		return nil
	}
	if q.dirty {
		q.results = q.mgr.GetWithComponents(q.kinds...)
		q.dirty = false
	}
	return q.results
}

// Invalidate marks the cache stale. Idempotent.
func (q *Query) Invalidate() { q.dirty = true }

func (q *Query) IsDirty() bool { return q.dirty }
func (q *Query) Len() int      { return len(q.Results()) }

// Kinds returns a copy of the component filter.
func (q *Query) Kinds() []Kind {
	out := make([]Kind, len(q.kinds))
	copy(out, q.kinds)
	return out
}

func (q *Query) ForEach(fn func(*Entity)) {
	for _, e := range q.Results() {
		fn(e)
	}
}

func (q *Query) Filter(keep func(*Entity) bool) []*Entity {
	var out []*Entity
	for _, e := range q.Results() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the first matching entity, or nil.
func (q *Query) Find(match func(*Entity) bool) *Entity {
	for _, e := range q.Results() {
		if match(e) {
			return e
		}
	}
	return nil
}

// Map applies fn to every entity in q's results.
func Map[R any](q *Query, fn func(*Entity) R) []R {
	res := q.Results()
	out := make([]R, 0, len(res))
	for _, e := range res {
		out = append(out, fn(e))
	}
	return out
}

func (q *Query) dispose() {
	q.mgr = nil
	q.results = nil
	q.dirty = false
}

// QueryManager creates and tracks queries, and marks every one of them dirty
// on any entity lifecycle event. The invalidation is coarse on purpose:
// churn is rare next to per-frame reads.
type QueryManager struct {
	mgr     *EntityManager
	queries map[*Query]struct{}
	subs    []event.Subscription
}

func NewQueryManager(mgr *EntityManager) *QueryManager {
	qm := &QueryManager{
		mgr:     mgr,
		queries: make(map[*Query]struct{}),
	}
	bus := mgr.Bus()
	qm.subs = []event.Subscription{
		event.Subscribe(bus, func(EntityCreated) { qm.InvalidateAll() }),
		event.Subscribe(bus, func(EntityAdded) { qm.InvalidateAll() }),
		event.Subscribe(bus, func(EntityDestroyed) { qm.InvalidateAll() }),
		event.Subscribe(bus, func(EntityRemoved) { qm.InvalidateAll() }),
		event.Subscribe(bus, func(EntityChanged) { qm.InvalidateAll() }),
	}
	return qm
}

// CreateQuery returns a tracked query over kinds. Nothing is computed until
// the first read.
func (qm *QueryManager) CreateQuery(kinds ...Kind) *Query {
	q := &Query{
		mgr:   qm.mgr,
		kinds: append([]Kind(nil), kinds...),
		dirty: true,
	}
	qm.queries[q] = struct{}{}
	return q
}

// RemoveQuery detaches and disposes q. Unknown queries are ignored.
func (qm *QueryManager) RemoveQuery(q *Query) {
	if _, ok := qm.queries[q]; !ok {
		return
	}
	delete(qm.queries, q)
	q.dispose()
}

func (qm *QueryManager) InvalidateAll() {
	for q := range qm.queries {
		q.dirty = true
	}
}

func (qm *QueryManager) Len() int { return len(qm.queries) }

// Close stops listening for lifecycle events and disposes every query.
func (qm *QueryManager) Close() {
	for _, s := range qm.subs {
		s.Cancel()
	}
	qm.subs = nil
	for q := range qm.queries {
		q.dispose()
	}
	clear(qm.queries)
}
