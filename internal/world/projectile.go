package world

import (
	"time"

	"github.com/swarmfall/game/internal/component"
	"github.com/swarmfall/game/internal/core/ecs"
	"github.com/swarmfall/game/internal/core/event"
	"github.com/swarmfall/game/internal/data"
	"go.uber.org/zap"
)

// ProjectileSpec describes one shot.
type ProjectileSpec struct {
	X, Y   float64
	VX, VY float64
	Radius float64
	Damage int
	Pierce int
	Owner  ecs.EntityID
	TTL    time.Duration
}

// ProjectilePool recycles projectile entities. The same type serves player
// shots (tag projectile) and enemy shots (tag enemy_projectile).
type ProjectilePool struct {
	entityPool
	tag ecs.Tag
}

func NewProjectilePool(def data.PoolDef, entities *ecs.EntityManager, bus *event.Bus, log *zap.Logger) *ProjectilePool {
	return newProjectilePool(def, ecs.TagProjectile, entities, bus, log)
}

func NewEnemyProjectilePool(def data.PoolDef, entities *ecs.EntityManager, bus *event.Bus, log *zap.Logger) *ProjectilePool {
	return newProjectilePool(def, ecs.TagEnemyProjectile, entities, bus, log)
}

func newProjectilePool(def data.PoolDef, tag ecs.Tag, entities *ecs.EntityManager, bus *event.Bus, log *zap.Logger) *ProjectilePool {
	build := func(e *ecs.Entity) {
		e.Add(&component.Transform{}).
			Add(&component.Velocity{}).
			Add(&component.CircleCollider{}).
			Add(&component.Projectile{}).
			Add(&component.Lifetime{}).
			AddTag(tag)
	}
	return &ProjectilePool{
		entityPool: newEntityPool(def, entities, build, bus, log),
		tag:        tag,
	}
}

// Tag returns the tag carried by this pool's projectiles.
func (p *ProjectilePool) Tag() ecs.Tag { return p.tag }

// Spawn resets a pooled projectile to spec and puts it in play. Returns false
// when the pool is at its maximum.
func (p *ProjectilePool) Spawn(spec ProjectileSpec) (*ecs.Entity, bool) {
	e, ok := p.acquire()
	if !ok {
		return nil, false
	}
	resetProjectile(e, spec)
	return p.activate(e), true
}

func resetProjectile(e *ecs.Entity, spec ProjectileSpec) {
	if tr, ok := ecs.Get[*component.Transform](e, ecs.KindTransform); ok {
		*tr = component.Transform{X: spec.X, Y: spec.Y, Width: spec.Radius * 2, Height: spec.Radius * 2}
	}
	if v, ok := ecs.Get[*component.Velocity](e, ecs.KindVelocity); ok {
		*v = component.Velocity{X: spec.VX, Y: spec.VY}
	}
	if c, ok := ecs.Get[*component.CircleCollider](e, ecs.KindCollider); ok {
		*c = component.CircleCollider{Radius: spec.Radius}
	}
	if pr, ok := ecs.Get[*component.Projectile](e, ecs.KindProjectile); ok {
		*pr = component.Projectile{Damage: spec.Damage, Pierce: spec.Pierce, Owner: spec.Owner}
	}
	if l, ok := ecs.Get[*component.Lifetime](e, ecs.KindLifetime); ok {
		*l = component.Lifetime{Remaining: spec.TTL, Total: spec.TTL}
	}
}
