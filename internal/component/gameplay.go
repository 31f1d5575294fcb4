package component

import (
	"time"

	"github.com/swarmfall/game/internal/core/ecs"
)

// Health of anything that can be damaged.
type Health struct {
	Current int
	Max     int
}

func (*Health) Kind() ecs.Kind { return ecs.KindHealth }

func (h *Health) Dead() bool { return h.Current <= 0 }

// Lifetime counts down every tick; the entity despawns at zero.
// A zero Total means the entity never expires.
type Lifetime struct {
	Remaining time.Duration
	Total     time.Duration
}

func (*Lifetime) Kind() ecs.Kind { return ecs.KindLifetime }

func (l *Lifetime) Expired() bool { return l.Total > 0 && l.Remaining <= 0 }

// Projectile data for player and enemy shots.
type Projectile struct {
	Damage int
	Pierce int // remaining extra targets; 0 = despawn on first hit
	Owner  ecs.EntityID
}

func (*Projectile) Kind() ecs.Kind { return ecs.KindProjectile }

// Mine is a stationary area hazard.
type Mine struct {
	Damage int
	Owner  ecs.EntityID
}

func (*Mine) Kind() ecs.Kind { return ecs.KindMine }

// Summon is an allied creature bound to an owner.
type Summon struct {
	Owner  ecs.EntityID
	Damage int
	Speed  float64
}

func (*Summon) Kind() ecs.Kind { return ecs.KindSummon }

// Pickup is a collectable with a value (experience, coins, healing).
type Pickup struct {
	Value int
}

func (*Pickup) Kind() ecs.Kind { return ecs.KindPickup }
