package world

import (
	"time"

	"github.com/swarmfall/game/internal/component"
	"github.com/swarmfall/game/internal/core/ecs"
	"github.com/swarmfall/game/internal/core/event"
	"github.com/swarmfall/game/internal/data"
	"go.uber.org/zap"
)

// MineSpec describes a stationary hazard.
type MineSpec struct {
	X, Y   float64
	Radius float64
	Damage int
	Owner  ecs.EntityID
	TTL    time.Duration
}

// MinePool recycles mine entities, tagged mine.
type MinePool struct {
	entityPool
}

func NewMinePool(def data.PoolDef, entities *ecs.EntityManager, bus *event.Bus, log *zap.Logger) *MinePool {
	build := func(e *ecs.Entity) {
		e.Add(&component.Transform{}).
			Add(&component.CircleCollider{}).
			Add(&component.Mine{}).
			Add(&component.Lifetime{}).
			AddTag(ecs.TagMine)
	}
	return &MinePool{entityPool: newEntityPool(def, entities, build, bus, log)}
}

// Spawn resets a pooled mine to spec and puts it in play.
func (p *MinePool) Spawn(spec MineSpec) (*ecs.Entity, bool) {
	e, ok := p.acquire()
	if !ok {
		return nil, false
	}
	if tr, ok := ecs.Get[*component.Transform](e, ecs.KindTransform); ok {
		*tr = component.Transform{X: spec.X, Y: spec.Y, Width: spec.Radius * 2, Height: spec.Radius * 2}
	}
	if c, ok := ecs.Get[*component.CircleCollider](e, ecs.KindCollider); ok {
		*c = component.CircleCollider{Radius: spec.Radius}
	}
	if m, ok := ecs.Get[*component.Mine](e, ecs.KindMine); ok {
		*m = component.Mine{Damage: spec.Damage, Owner: spec.Owner}
	}
	if l, ok := ecs.Get[*component.Lifetime](e, ecs.KindLifetime); ok {
		*l = component.Lifetime{Remaining: spec.TTL, Total: spec.TTL}
	}
	return p.activate(e), true
}
