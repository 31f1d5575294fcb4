package world

import (
	"time"

	"github.com/swarmfall/game/internal/component"
	"github.com/swarmfall/game/internal/core/ecs"
	"github.com/swarmfall/game/internal/core/event"
	"github.com/swarmfall/game/internal/data"
	"go.uber.org/zap"
)

// SummonSpec describes an allied creature bound to an owner.
// A zero TTL keeps the summon until it is dismissed or killed.
type SummonSpec struct {
	X, Y   float64
	Radius float64
	HP     int
	Damage int
	Speed  float64
	Owner  ecs.EntityID
	TTL    time.Duration
}

// SummonPool recycles summon entities, tagged summon and ally.
type SummonPool struct {
	entityPool
}

func NewSummonPool(def data.PoolDef, entities *ecs.EntityManager, bus *event.Bus, log *zap.Logger) *SummonPool {
	build := func(e *ecs.Entity) {
		e.Add(&component.Transform{}).
			Add(&component.Velocity{}).
			Add(&component.CircleCollider{}).
			Add(&component.Health{}).
			Add(&component.Summon{}).
			Add(&component.Lifetime{}).
			AddTag(ecs.TagSummon).
			AddTag(ecs.TagAlly)
	}
	return &SummonPool{entityPool: newEntityPool(def, entities, build, bus, log)}
}

// Spawn resets a pooled summon to spec and puts it in play.
func (p *SummonPool) Spawn(spec SummonSpec) (*ecs.Entity, bool) {
	e, ok := p.acquire()
	if !ok {
		return nil, false
	}
	resetSummon(e, spec)
	return p.activate(e), true
}

// DespawnOwnedBy dismisses every summon of owner and returns how many left.
func (p *SummonPool) DespawnOwnedBy(owner ecs.EntityID) int {
	n := 0
	for _, e := range p.Active() {
		s, ok := ecs.Get[*component.Summon](e, ecs.KindSummon)
		if ok && s.Owner == owner && p.Despawn(e) {
			n++
		}
	}
	return n
}

func resetSummon(e *ecs.Entity, spec SummonSpec) {
	if tr, ok := ecs.Get[*component.Transform](e, ecs.KindTransform); ok {
		*tr = component.Transform{X: spec.X, Y: spec.Y, Width: spec.Radius * 2, Height: spec.Radius * 2}
	}
	if v, ok := ecs.Get[*component.Velocity](e, ecs.KindVelocity); ok {
		*v = component.Velocity{}
	}
	if c, ok := ecs.Get[*component.CircleCollider](e, ecs.KindCollider); ok {
		*c = component.CircleCollider{Radius: spec.Radius}
	}
	if h, ok := ecs.Get[*component.Health](e, ecs.KindHealth); ok {
		*h = component.Health{Current: spec.HP, Max: spec.HP}
	}
	if s, ok := ecs.Get[*component.Summon](e, ecs.KindSummon); ok {
		*s = component.Summon{Owner: spec.Owner, Damage: spec.Damage, Speed: spec.Speed}
	}
	if l, ok := ecs.Get[*component.Lifetime](e, ecs.KindLifetime); ok {
		*l = component.Lifetime{Remaining: spec.TTL, Total: spec.TTL}
	}
}
