package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/swarmfall/game/internal/component"
	"github.com/swarmfall/game/internal/core/ecs"
	"github.com/swarmfall/game/internal/system"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM hosting collision scripts.
// Single-goroutine access only (game loop).
//
// Scripts see three globals:
//
//	on_collision(tag_a, tag_b, fn)  -- fn(a, b) with a tagged tag_a
//	despawn(id)                     -- back to pool or onto the destroy queue
//	damage(id, amount)              -- returns remaining health, nil if none
//
// Entities are passed as tables {id=, tags={...}, x=, y=}; id is an opaque
// string to hand back to despawn and damage.
type Engine struct {
	vm         *lua.LState
	log        *zap.Logger
	entities   *ecs.EntityManager
	collisions *system.CollisionSystem
	despawner  system.Despawner

	bindings []binding
}

type binding struct {
	tagA, tagB ecs.Tag
	id         system.CallbackID
}

// NewEngine creates a Lua engine and loads all scripts under scriptsDir/collision.
// A missing directory loads nothing.
func NewEngine(scriptsDir string, entities *ecs.EntityManager, collisions *system.CollisionSystem, despawner system.Despawner, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	// no io, os or file loading: collision scripts only compute and call back in
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		vm.Push(vm.NewFunction(lib.open))
		vm.Push(lua.LString(lib.name))
		vm.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		vm.SetGlobal(name, lua.LNil)
	}

	e := &Engine{
		vm:         vm,
		log:        log,
		entities:   entities,
		collisions: collisions,
		despawner:  despawner,
	}
	vm.SetGlobal("on_collision", vm.NewFunction(e.luaOnCollision))
	vm.SetGlobal("despawn", vm.NewFunction(e.luaDespawn))
	vm.SetGlobal("damage", vm.NewFunction(e.luaDamage))

	if err := e.loadDir(filepath.Join(scriptsDir, "collision")); err != nil {
		e.Close()
		return nil, fmt.Errorf("load collision scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua, for tests and console use.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Bindings returns how many collision callbacks scripts have registered.
func (e *Engine) Bindings() int { return len(e.bindings) }

func (e *Engine) luaOnCollision(L *lua.LState) int {
	nameA := L.CheckString(1)
	nameB := L.CheckString(2)
	fn := L.CheckFunction(3)

	tagA, ok := ecs.ParseTag(nameA)
	if !ok {
		L.ArgError(1, "unknown tag "+nameA)
		return 0
	}
	tagB, ok := ecs.ParseTag(nameB)
	if !ok {
		L.ArgError(2, "unknown tag "+nameB)
		return 0
	}

	id := e.collisions.RegisterCollisionCallback(tagA, tagB, func(a, b *ecs.Entity, _, _ component.Collider) {
		e.callCollision(fn, tagA, tagB, a, b)
	})
	e.bindings = append(e.bindings, binding{tagA: tagA, tagB: tagB, id: id})
	return 0
}

// callCollision runs a script handler in protected mode. Lua errors are
// logged and never abort the collision pass.
func (e *Engine) callCollision(fn *lua.LFunction, tagA, tagB ecs.Tag, a, b *ecs.Entity) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, e.entityTable(a), e.entityTable(b)); err != nil {
		e.log.Error("lua collision handler error",
			zap.Stringer("tag_a", tagA),
			zap.Stringer("tag_b", tagB),
			zap.Error(err))
	}
}

func (e *Engine) entityTable(ent *ecs.Entity) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", luaID(ent.ID()))

	tags := e.vm.NewTable()
	ent.Tags().Each(func(tag ecs.Tag) {
		tags.Append(lua.LString(tag.String()))
	})
	t.RawSetString("tags", tags)

	if tr, ok := ecs.Get[*component.Transform](ent, ecs.KindTransform); ok {
		t.RawSetString("x", lua.LNumber(tr.X))
		t.RawSetString("y", lua.LNumber(tr.Y))
	}
	return t
}

// Entity ids carry the generation in the high 32 bits, past what a Lua
// number holds exactly, so scripts see them as decimal strings.
func luaID(id ecs.EntityID) lua.LString {
	return lua.LString(strconv.FormatUint(uint64(id), 10))
}

func checkID(L *lua.LState, n int) ecs.EntityID {
	id, err := strconv.ParseUint(L.CheckString(n), 10, 64)
	if err != nil {
		L.ArgError(n, "entity id expected")
		return 0
	}
	return ecs.EntityID(id)
}

func (e *Engine) lookup(L *lua.LState) *ecs.Entity {
	return e.entities.GetByID(checkID(L, 1))
}

func (e *Engine) luaDespawn(L *lua.LState) int {
	ent := e.lookup(L)
	if ent == nil {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LBool(e.despawner.Despawn(ent)))
	return 1
}

func (e *Engine) luaDamage(L *lua.LState) int {
	ent := e.lookup(L)
	amount := L.CheckInt(2)
	h, ok := ecs.Get[*component.Health](ent, ecs.KindHealth)
	if !ok || !ent.IsActive() {
		L.Push(lua.LNil)
		return 1
	}
	h.Current -= amount
	if h.Dead() {
		e.despawner.Despawn(ent)
	}
	L.Push(lua.LNumber(h.Current))
	return 1
}

// Close unregisters script callbacks and shuts down the Lua VM.
func (e *Engine) Close() {
	for _, b := range e.bindings {
		e.collisions.UnregisterCollisionCallback(b.tagA, b.tagB, b.id)
	}
	e.bindings = nil
	e.vm.Close()
}
