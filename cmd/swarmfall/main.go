package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/swarmfall/game/internal/config"
	"github.com/swarmfall/game/internal/core/ecs"
	"github.com/swarmfall/game/internal/core/event"
	coresys "github.com/swarmfall/game/internal/core/system"
	"github.com/swarmfall/game/internal/data"
	"github.com/swarmfall/game/internal/scripting"
	"github.com/swarmfall/game/internal/system"
	"github.com/swarmfall/game/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/game.toml"
	if p := os.Getenv("SWARMFALL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch cfg.Sim.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	// 3. Load data tables
	pools, err := data.LoadPoolTable(cfg.Data.PoolList)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("pool list: %w", err)
		}
		log.Warn("pool list missing, using defaults", zap.String("path", cfg.Data.PoolList))
		pools = data.DefaultPoolTable()
	}
	log.Info("pools loaded", zap.Int("count", pools.Count()))

	// 4. Build world and pools
	sim, err := newSimulation(cfg, pools, log)
	if err != nil {
		return err
	}
	defer sim.Close()

	// 5. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	log.Info("simulation started",
		zap.Duration("tick", cfg.Sim.TickRate),
		zap.Int("max_ticks", cfg.Sim.MaxTicks))

	for {
		select {
		case <-ticker.C:
			sim.Step(cfg.Sim.TickRate)
			if cfg.Sim.MaxTicks > 0 && sim.Ticks() >= uint64(cfg.Sim.MaxTicks) {
				log.Info("tick limit reached", zap.Uint64("ticks", sim.Ticks()))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// simulation wires one run: world state, systems, scripts and the demo spawner.
type simulation struct {
	state      *world.State
	runner     *coresys.Runner
	collisions *system.CollisionSystem
	scripts    *scripting.Engine
	spawner    *spawner
	cleanup    *system.CleanupSystem
	subs       []event.Subscription
	statsEvery int
	log        *zap.Logger
}

func newSimulation(cfg *config.Config, pools *data.PoolTable, log *zap.Logger) (*simulation, error) {
	bus := event.NewBus()
	ecsWorld := ecs.NewWorld(bus)
	state := world.NewState(ecsWorld, pools, log)

	collisions := system.NewCollisionSystem(ecsWorld.Queries(), bus, log)
	collisions.SetIsolation(cfg.Collision.IsolateCallbacks)
	collisions.SetEntityWarning(cfg.Collision.MaxEntitiesWarn)

	scripts, err := scripting.NewEngine(cfg.Data.ScriptsDir, ecsWorld.Entities(), collisions, state, log)
	if err != nil {
		return nil, fmt.Errorf("scripting: %w", err)
	}
	log.Info("collision scripts loaded", zap.Int("bindings", scripts.Bindings()))

	sp := newSpawner(state, cfg.Sim, log)

	runner := coresys.NewRunner()
	runner.Register(sp)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewMovementSystem(ecsWorld.Queries()))
	runner.Register(collisions)
	runner.Register(system.NewLifetimeSystem(ecsWorld.Queries(), state))
	cleanup := system.NewCleanupSystem(ecsWorld, log)
	runner.Register(cleanup)
	runner.SetBudget(cfg.Sim.TickRate, func(tick uint64, took time.Duration) {
		log.Warn("slow tick", zap.Uint64("tick", tick), zap.Duration("took", took))
	})

	sim := &simulation{
		state:      state,
		runner:     runner,
		collisions: collisions,
		scripts:    scripts,
		spawner:    sp,
		cleanup:    cleanup,
		statsEvery: cfg.Sim.StatsEvery,
		log:        log,
	}
	sim.subs = append(sim.subs,
		event.Subscribe(bus, func(ev event.PoolExhausted) {
			log.Debug("pool exhausted event", zap.String("pool", ev.Pool), zap.Int("max", ev.Max))
		}),
		event.Subscribe(bus, func(ev ecs.EntityDestroyed) {
			if ev.Entity.HasTag(ecs.TagEnemy) {
				sp.kills++
			}
		}),
	)
	return sim, nil
}

// Step advances the simulation by one tick.
func (s *simulation) Step(dt time.Duration) {
	s.runner.Tick(dt)
	if s.statsEvery > 0 && s.runner.Ticks()%uint64(s.statsEvery) == 0 {
		fields := append(s.state.PoolStats(),
			zap.Uint64("tick", s.runner.Ticks()),
			zap.Int("entities", s.state.Entities().Count()),
			zap.Int("collisions", len(s.collisions.GetAllCollisions())),
			zap.Int("kills", s.spawner.kills),
			zap.Uint64("destroyed", s.cleanup.Destroyed()),
			zap.Duration("last_tick", s.runner.LastTickDuration()))
		s.log.Info("pool stats", fields...)
	}
}

func (s *simulation) Ticks() uint64 { return s.runner.Ticks() }

// Close stops scripts, cancels subscriptions and tears the world down.
func (s *simulation) Close() {
	s.scripts.Close()
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.state.Reset()
	s.state.World().Close()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
