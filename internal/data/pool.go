package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pool names used by the world state and in pool_list.yaml.
const (
	PoolProjectile      = "projectile"
	PoolEnemyProjectile = "enemy_projectile"
	PoolSummon          = "summon"
	PoolMine            = "mine"
)

// PoolDef sizes one object pool.
type PoolDef struct {
	Name    string `yaml:"name"`
	Initial int    `yaml:"initial"`
	Max     int    `yaml:"max"`
}

type poolListFile struct {
	Pools []PoolDef `yaml:"pools"`
}

// PoolTable holds pool sizes indexed by pool name.
type PoolTable struct {
	pools map[string]PoolDef
}

var defaultPools = []PoolDef{
	{Name: PoolProjectile, Initial: 64, Max: 256},
	{Name: PoolEnemyProjectile, Initial: 64, Max: 256},
	{Name: PoolSummon, Initial: 8, Max: 32},
	{Name: PoolMine, Initial: 16, Max: 64},
}

// DefaultPoolTable returns the built-in sizes.
func DefaultPoolTable() *PoolTable {
	t := &PoolTable{pools: make(map[string]PoolDef, len(defaultPools))}
	for _, d := range defaultPools {
		t.pools[d.Name] = d
	}
	return t
}

// Get returns the sizes for a pool. Unknown names fall back to the
// built-in defaults, then to a small 8/32 pool.
func (t *PoolTable) Get(name string) PoolDef {
	if t != nil {
		if d, ok := t.pools[name]; ok {
			return d
		}
	}
	for _, d := range defaultPools {
		if d.Name == name {
			return d
		}
	}
	return PoolDef{Name: name, Initial: 8, Max: 32}
}

// With returns a copy of t with defs overriding entries by name.
func (t *PoolTable) With(defs ...PoolDef) *PoolTable {
	out := DefaultPoolTable()
	if t != nil {
		for name, d := range t.pools {
			out.pools[name] = d
		}
	}
	for _, d := range defs {
		out.pools[d.Name] = d
	}
	return out
}

// Count returns the number of pool entries.
func (t *PoolTable) Count() int {
	return len(t.pools)
}

// LoadPoolTable loads pool sizes from a YAML file. Entries override the
// built-in defaults by name.
func LoadPoolTable(path string) (*PoolTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool_list: %w", err)
	}
	return parsePoolTable(raw)
}

func parsePoolTable(raw []byte) (*PoolTable, error) {
	var f poolListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse pool_list: %w", err)
	}
	t := DefaultPoolTable()
	for _, d := range f.Pools {
		if d.Name == "" {
			return nil, fmt.Errorf("parse pool_list: entry without name")
		}
		if d.Initial < 0 || d.Max < 0 {
			return nil, fmt.Errorf("parse pool_list: %s: negative size", d.Name)
		}
		t.pools[d.Name] = d
	}
	return t, nil
}
