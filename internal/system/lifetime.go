package system

import (
	"time"

	"github.com/swarmfall/game/internal/component"
	"github.com/swarmfall/game/internal/core/ecs"
	coresys "github.com/swarmfall/game/internal/core/system"
)

// Despawner takes an entity out of play: back to its pool if pooled,
// otherwise onto the destroy queue.
type Despawner interface {
	Despawn(e *ecs.Entity) bool
}

// LifetimeSystem counts down Lifetime components and despawns expired
// entities. Phase 4 (PostUpdate).
type LifetimeSystem struct {
	query     *ecs.Query
	despawner Despawner
	expired   []*ecs.Entity
}

func NewLifetimeSystem(queries *ecs.QueryManager, despawner Despawner) *LifetimeSystem {
	return &LifetimeSystem{
		query:     queries.CreateQuery(ecs.KindLifetime),
		despawner: despawner,
	}
}

func (s *LifetimeSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *LifetimeSystem) Update(dt time.Duration) {
	s.expired = s.expired[:0]
	for _, e := range s.query.Results() {
		l, ok := ecs.Get[*component.Lifetime](e, ecs.KindLifetime)
		if !ok || l.Total <= 0 {
			continue
		}
		l.Remaining -= dt
		if l.Expired() {
			s.expired = append(s.expired, e)
		}
	}
	// despawn after the scan; each despawn invalidates the query
	for i, e := range s.expired {
		s.despawner.Despawn(e)
		s.expired[i] = nil
	}
}
