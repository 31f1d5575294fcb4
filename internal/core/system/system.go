package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: external input collaborators
	PhasePreUpdate               // 1: deliver last tick's deferred events
	PhaseUpdate                  // 2: movement and game logic
	PhaseCollision               // 3: pairwise collision pass and dispatch
	PhasePostUpdate              // 4: lifetimes, despawns, spawning
	PhaseCleanup                 // 5: destroy queued entities
)

var phaseNames = [...]string{"input", "pre_update", "update", "collision", "post_update", "cleanup"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
