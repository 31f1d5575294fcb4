package world

import (
	"github.com/swarmfall/game/internal/core/ecs"
	"github.com/swarmfall/game/internal/data"
	"go.uber.org/zap"
)

// State is the explicit owner of a run's entity world and object pools.
// Systems receive what they need from it instead of reaching for globals.
// Accessed only from the game loop goroutine, so there are no locks.
type State struct {
	world *ecs.World

	Projectiles      *ProjectilePool
	EnemyProjectiles *ProjectilePool
	Summons          *SummonPool
	Mines            *MinePool

	log *zap.Logger
}

// NewState builds the pools sized by pools (nil uses the defaults) on top of w.
func NewState(w *ecs.World, pools *data.PoolTable, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	em, bus := w.Entities(), w.Bus()
	return &State{
		world:            w,
		Projectiles:      NewProjectilePool(pools.Get(data.PoolProjectile), em, bus, log),
		EnemyProjectiles: NewEnemyProjectilePool(pools.Get(data.PoolEnemyProjectile), em, bus, log),
		Summons:          NewSummonPool(pools.Get(data.PoolSummon), em, bus, log),
		Mines:            NewMinePool(pools.Get(data.PoolMine), em, bus, log),
		log:              log,
	}
}

func (s *State) World() *ecs.World            { return s.world }
func (s *State) Entities() *ecs.EntityManager { return s.world.Entities() }
func (s *State) Queries() *ecs.QueryManager   { return s.world.Queries() }

// Despawn takes e out of play. Pooled entities go back to their pool at once;
// anything else is deactivated and queued for destruction at tick end.
func (s *State) Despawn(e *ecs.Entity) bool {
	if e == nil || !e.Registered() {
		return false
	}
	switch {
	case e.HasTag(ecs.TagProjectile):
		if s.Projectiles.Despawn(e) {
			return true
		}
	case e.HasTag(ecs.TagEnemyProjectile):
		if s.EnemyProjectiles.Despawn(e) {
			return true
		}
	case e.HasTag(ecs.TagSummon):
		if s.Summons.Despawn(e) {
			return true
		}
	case e.HasTag(ecs.TagMine):
		if s.Mines.Despawn(e) {
			return true
		}
	}
	s.world.MarkForDestruction(e)
	return true
}

// PoolStats reports active counts per pool, for periodic logging.
func (s *State) PoolStats() []zap.Field {
	return []zap.Field{
		zap.Int("projectiles", s.Projectiles.ActiveCount()),
		zap.Int("enemy_projectiles", s.EnemyProjectiles.ActiveCount()),
		zap.Int("summons", s.Summons.ActiveCount()),
		zap.Int("mines", s.Mines.ActiveCount()),
	}
}

// Reset tears the run down: pools take back their entities, then every
// remaining entity is destroyed.
func (s *State) Reset() {
	s.Projectiles.DespawnAll()
	s.EnemyProjectiles.DespawnAll()
	s.Summons.DespawnAll()
	s.Mines.DespawnAll()
	s.world.FlushDestroyQueue()
	s.world.Entities().Clear()
	s.log.Debug("world reset")
}
