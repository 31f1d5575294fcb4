package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Sim       SimConfig       `toml:"sim"`
	Collision CollisionConfig `toml:"collision"`
	Data      DataConfig      `toml:"data"`
	Logging   LoggingConfig   `toml:"logging"`
}

type SimConfig struct {
	TickRate    time.Duration `toml:"tick_rate"`
	MaxTicks    int           `toml:"max_ticks"`    // 0 = run until signalled
	Seed        int64         `toml:"seed"`         // 0 = time-based
	Profile     string        `toml:"profile"`      // "", "cpu" or "mem"
	StatsEvery  int           `toml:"stats_every"`  // ticks between pool stat logs, 0 = off
	EnemyCount  int           `toml:"enemy_count"`  // enemies kept alive by the demo spawner
	FireEvery   int           `toml:"fire_every"`   // ticks between player volleys
	ArenaRadius float64       `toml:"arena_radius"` // spawn ring radius
}

type CollisionConfig struct {
	IsolateCallbacks bool `toml:"isolate_callbacks"`
	MaxEntitiesWarn  int  `toml:"max_entities_warn"`
}

type DataConfig struct {
	PoolList   string `toml:"pool_list"`
	ScriptsDir string `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("sim.tick_rate must be positive")
	}
	switch c.Sim.Profile {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("sim.profile %q: want cpu or mem", c.Sim.Profile)
	}
	return nil
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config { return defaults() }

func defaults() *Config {
	return &Config{
		Sim: SimConfig{
			TickRate:    16 * time.Millisecond,
			StatsEvery:  300,
			EnemyCount:  40,
			FireEvery:   6,
			ArenaRadius: 60,
		},
		Collision: CollisionConfig{
			IsolateCallbacks: true,
			MaxEntitiesWarn:  500,
		},
		Data: DataConfig{
			PoolList:   "data/yaml/pool_list.yaml",
			ScriptsDir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
