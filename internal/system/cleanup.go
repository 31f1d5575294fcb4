package system

import (
	"time"

	"github.com/swarmfall/game/internal/core/ecs"
	coresys "github.com/swarmfall/game/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem destroys entities queued with World.MarkForDestruction.
// Phase 5 (Cleanup), so every other system has finished with them.
type CleanupSystem struct {
	world     *ecs.World
	log       *zap.Logger
	destroyed uint64
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if s.world.PendingDestruction() == 0 {
		return
	}
	n := s.world.FlushDestroyQueue()
	s.destroyed += uint64(n)
	if n > 0 {
		s.log.Debug("destroyed entities", zap.Int("count", n), zap.Int("remaining", s.world.Entities().Count()))
	}
}

// Destroyed returns the running total of entities this system destroyed.
func (s *CleanupSystem) Destroyed() uint64 { return s.destroyed }
