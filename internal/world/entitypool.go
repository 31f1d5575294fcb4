package world

import (
	"github.com/swarmfall/game/internal/core/ecs"
	"github.com/swarmfall/game/internal/core/event"
	"github.com/swarmfall/game/internal/core/pool"
	"github.com/swarmfall/game/internal/data"
	"go.uber.org/zap"
)

// entityPool recycles pre-built entities. Free entities are inactive and
// unregistered; active ones are registered with the EntityManager.
type entityPool struct {
	entities *ecs.EntityManager
	objects  *pool.ObjectPool[*ecs.Entity]
}

// newEntityPool builds entities with build, which attaches every component
// and tag the pooled kind needs. Spawn only resets component fields.
func newEntityPool(def data.PoolDef, entities *ecs.EntityManager, build func(*ecs.Entity), bus *event.Bus, log *zap.Logger) entityPool {
	factory := func() *ecs.Entity {
		e := entities.NewEntity()
		build(e)
		e.SetActive(false)
		return e
	}
	cfg := pool.Config{Name: def.Name, Initial: def.Initial, Max: def.Max}
	return entityPool{
		entities: entities,
		objects:  pool.New(cfg, factory, bus, log),
	}
}

// acquire takes a free entity. The caller resets it and then calls activate.
func (p *entityPool) acquire() (*ecs.Entity, bool) {
	return p.objects.Get()
}

func (p *entityPool) activate(e *ecs.Entity) *ecs.Entity {
	e.SetActive(true)
	return p.entities.Add(e)
}

// Despawn unregisters e and returns it to the pool. Entities this pool did
// not hand out are ignored.
func (p *entityPool) Despawn(e *ecs.Entity) bool {
	if e == nil || !p.objects.Contains(e) {
		return false
	}
	e.SetActive(false)
	p.entities.Remove(e)
	p.objects.Release(e)
	return true
}

// DespawnAll returns every active entity to the pool.
func (p *entityPool) DespawnAll() {
	for _, e := range p.objects.ActiveObjects() {
		e.SetActive(false)
		p.entities.Remove(e)
	}
	p.objects.ReleaseAll()
}

// Active returns a snapshot of the entities currently in play.
func (p *entityPool) Active() []*ecs.Entity { return p.objects.ActiveObjects() }

func (p *entityPool) ActiveCount() int { return p.objects.ActiveCount() }
func (p *entityPool) Max() int         { return p.objects.Max() }
