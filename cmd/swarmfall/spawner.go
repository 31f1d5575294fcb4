package main

import (
	"math"
	"math/rand"
	"time"

	"github.com/swarmfall/game/internal/component"
	"github.com/swarmfall/game/internal/config"
	"github.com/swarmfall/game/internal/core/ecs"
	coresys "github.com/swarmfall/game/internal/core/system"
	"github.com/swarmfall/game/internal/world"
	"go.uber.org/zap"
)

const (
	enemySpeed      = 8.0
	enemyHP         = 10
	shotSpeed       = 40.0
	shotTTL         = 2 * time.Second
	enemyShotChance = 0.02
	mineTTL         = 10 * time.Second
	summonTTL       = 15 * time.Second
	maxSummons      = 3
	playerHP        = 50
	pickupDrift     = 3.0
	pickupTTL       = 20 * time.Second
)

// spawner drives the headless demo: it keeps a player alive in the middle of
// the arena, feeds enemies in from a ring and fires pooled shots, mines and
// summons at them. Collision outcomes are left to the Lua scripts.
type spawner struct {
	state *world.State
	cfg   config.SimConfig
	rng   *rand.Rand
	log   *zap.Logger

	player *ecs.Entity
	tick   int
	kills  int
}

func newSpawner(state *world.State, cfg config.SimConfig, log *zap.Logger) *spawner {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.FireEvery < 1 {
		cfg.FireEvery = 1
	}
	return &spawner{
		state: state,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
		log:   log,
	}
}

func (s *spawner) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *spawner) Update(_ time.Duration) {
	s.tick++
	if s.player == nil || !s.player.IsActive() {
		if s.player != nil {
			dismissed := s.state.Summons.DespawnOwnedBy(s.player.ID())
			s.log.Info("player down, respawning",
				zap.Int("tick", s.tick),
				zap.Int("kills", s.kills),
				zap.Int("summons_dismissed", dismissed))
		}
		s.player = s.spawnPlayer()
	}

	em := s.state.Entities()
	for n := activeCount(em.GetByTag(ecs.TagEnemy)); n < s.cfg.EnemyCount; n++ {
		s.spawnEnemy()
	}
	if s.rng.Intn(60) == 0 {
		s.spawnPickup()
	}

	if s.tick%s.cfg.FireEvery == 0 {
		s.fireAtNearest()
	}
	if s.tick%(s.cfg.FireEvery*5) == 0 {
		s.dropMine()
	}
	if s.tick%60 == 0 && s.state.Summons.ActiveCount() < maxSummons {
		s.summon()
	}
	for _, e := range em.GetByTag(ecs.TagEnemy) {
		if e.IsActive() && s.rng.Float64() < enemyShotChance {
			s.enemyFire(e)
		}
	}
}

func (s *spawner) spawnPlayer() *ecs.Entity {
	return s.state.Entities().Create(func(e *ecs.Entity) {
		e.Add(&component.Transform{Width: 2, Height: 2}).
			Add(&component.BoxCollider{}).
			Add(&component.Health{Current: playerHP, Max: playerHP}).
			AddTag(ecs.TagPlayer)
	})
}

func (s *spawner) ringPoint() (float64, float64) {
	a := s.rng.Float64() * 2 * math.Pi
	return math.Cos(a) * s.cfg.ArenaRadius, math.Sin(a) * s.cfg.ArenaRadius
}

func (s *spawner) spawnEnemy() {
	x, y := s.ringPoint()
	vx, vy := heading(x, y, 0, 0, enemySpeed)
	s.state.Entities().Create(func(e *ecs.Entity) {
		e.Add(&component.Transform{X: x, Y: y, Width: 2, Height: 2}).
			Add(&component.Velocity{X: vx, Y: vy}).
			Add(&component.CircleCollider{Radius: 1}).
			Add(&component.Health{Current: enemyHP, Max: enemyHP}).
			AddTag(ecs.TagEnemy)
	})
}

func (s *spawner) spawnPickup() {
	x, y := s.ringPoint()
	x, y = x/2, y/2
	vx, vy := heading(x, y, 0, 0, pickupDrift)
	s.state.Entities().Create(func(e *ecs.Entity) {
		e.Add(&component.Transform{X: x, Y: y, Width: 1, Height: 1}).
			Add(&component.Velocity{X: vx, Y: vy}).
			Add(&component.CircleCollider{Radius: 0.5}).
			Add(&component.Lifetime{Remaining: pickupTTL, Total: pickupTTL}).
			Add(&component.Pickup{Value: 1 + s.rng.Intn(5)}).
			AddTag(ecs.TagPickup)
	})
}

func (s *spawner) nearestEnemy() *ecs.Entity {
	px, py := position(s.player)
	var best *ecs.Entity
	bestD := math.Inf(1)
	for _, e := range s.state.Entities().GetByTag(ecs.TagEnemy) {
		if !e.IsActive() {
			continue
		}
		x, y := position(e)
		if d := math.Hypot(x-px, y-py); d < bestD {
			best, bestD = e, d
		}
	}
	return best
}

func (s *spawner) fireAtNearest() {
	target := s.nearestEnemy()
	if target == nil {
		return
	}
	px, py := position(s.player)
	tx, ty := position(target)
	vx, vy := heading(px, py, tx, ty, shotSpeed)
	s.state.Projectiles.Spawn(world.ProjectileSpec{
		X: px, Y: py, VX: vx, VY: vy,
		Radius: 0.5,
		Damage: 4,
		Owner:  s.player.ID(),
		TTL:    shotTTL,
	})
}

func (s *spawner) enemyFire(e *ecs.Entity) {
	x, y := position(e)
	px, py := position(s.player)
	vx, vy := heading(x, y, px, py, shotSpeed/2)
	s.state.EnemyProjectiles.Spawn(world.ProjectileSpec{
		X: x, Y: y, VX: vx, VY: vy,
		Radius: 0.4,
		Damage: 2,
		Owner:  e.ID(),
		TTL:    shotTTL,
	})
}

func (s *spawner) dropMine() {
	px, py := position(s.player)
	s.state.Mines.Spawn(world.MineSpec{
		X:      px + (s.rng.Float64()*2-1)*s.cfg.ArenaRadius/3,
		Y:      py + (s.rng.Float64()*2-1)*s.cfg.ArenaRadius/3,
		Radius: 1.5,
		Damage: 8,
		Owner:  s.player.ID(),
		TTL:    mineTTL,
	})
}

func (s *spawner) summon() {
	px, py := position(s.player)
	s.state.Summons.Spawn(world.SummonSpec{
		X: px + 4, Y: py,
		Radius: 1,
		HP:     20,
		Damage: 1,
		Owner:  s.player.ID(),
		TTL:    summonTTL,
	})
}

func position(e *ecs.Entity) (float64, float64) {
	if tr, ok := ecs.Get[*component.Transform](e, ecs.KindTransform); ok {
		return tr.X, tr.Y
	}
	return 0, 0
}

// heading returns a velocity of the given speed pointing from (x0,y0) to (x1,y1).
func heading(x0, y0, x1, y1, speed float64) (float64, float64) {
	dx, dy := x1-x0, y1-y0
	d := math.Hypot(dx, dy)
	if d == 0 {
		return 0, 0
	}
	return dx / d * speed, dy / d * speed
}

func activeCount(es []*ecs.Entity) int {
	n := 0
	for _, e := range es {
		if e.IsActive() {
			n++
		}
	}
	return n
}
