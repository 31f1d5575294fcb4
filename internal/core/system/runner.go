package system

import "time"

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	ticks   uint64

	last   time.Duration
	budget time.Duration
	onSlow func(tick uint64, took time.Duration)
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

// Register inserts s after every system of the same or an earlier phase.
func (r *Runner) Register(s System) {
	i := len(r.systems)
	for i > 0 && r.systems[i-1].Phase() > s.Phase() {
		i--
	}
	r.systems = append(r.systems, nil)
	copy(r.systems[i+1:], r.systems[i:])
	r.systems[i] = s
}

// SetBudget reports ticks that take longer than d of wall time to onSlow.
// A zero budget disables the check.
func (r *Runner) SetBudget(d time.Duration, onSlow func(tick uint64, took time.Duration)) {
	r.budget = d
	r.onSlow = onSlow
}

func (r *Runner) Tick(dt time.Duration) {
	start := time.Now()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.ticks++
	r.last = time.Since(start)
	if r.budget > 0 && r.last > r.budget && r.onSlow != nil {
		r.onSlow(r.ticks, r.last)
	}
}

// TickPhase runs only the systems of one phase. Used by hosts that poll
// input more often than they step the simulation.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Ticks returns how many full ticks have run.
func (r *Runner) Ticks() uint64 { return r.ticks }

// LastTickDuration is the wall time spent in the most recent Tick.
func (r *Runner) LastTickDuration() time.Duration { return r.last }

func (r *Runner) Len() int { return len(r.systems) }
