package system

import (
	"time"

	"github.com/swarmfall/game/internal/component"
	"github.com/swarmfall/game/internal/core/ecs"
	coresys "github.com/swarmfall/game/internal/core/system"
)

// MovementSystem integrates Transform by Velocity.
// Phase 2 (Update).
type MovementSystem struct {
	query *ecs.Query
}

func NewMovementSystem(queries *ecs.QueryManager) *MovementSystem {
	return &MovementSystem{query: queries.CreateQuery(ecs.KindTransform, ecs.KindVelocity)}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	for _, e := range s.query.Results() {
		tr, ok := ecs.Get[*component.Transform](e, ecs.KindTransform)
		if !ok {
			continue
		}
		v, ok := ecs.Get[*component.Velocity](e, ecs.KindVelocity)
		if !ok {
			continue
		}
		tr.X += v.X * sec
		tr.Y += v.Y * sec
	}
}
