package system

import (
	"testing"
	"time"

	"github.com/swarmfall/game/internal/component"
	"github.com/swarmfall/game/internal/core/ecs"
	"github.com/swarmfall/game/internal/core/event"
	"github.com/swarmfall/game/internal/data"
	"github.com/swarmfall/game/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const frame = 16 * time.Millisecond

func newCollisionWorld(t *testing.T) (*ecs.World, *CollisionSystem) {
	t.Helper()
	w := ecs.NewWorld(event.NewBus())
	return w, NewCollisionSystem(w.Queries(), w.Bus(), zap.NewNop())
}

func spawnCircle(w *ecs.World, x, y, r float64, tags ...ecs.Tag) *ecs.Entity {
	return w.Entities().Create(func(e *ecs.Entity) {
		e.Add(&component.Transform{X: x, Y: y}).Add(&component.CircleCollider{Radius: r})
		for _, t := range tags {
			e.AddTag(t)
		}
	})
}

func TestCallbackArgumentOrderFollowsRegistration(t *testing.T) {
	w, cs := newCollisionWorld(t)
	// pickup is created first so it is EntityA internally
	pickup := spawnCircle(w, 0, 0, 1, ecs.TagPickup)
	player := spawnCircle(w, 1, 0, 1, ecs.TagPlayer)

	calls := 0
	cs.RegisterCollisionCallback(ecs.TagPlayer, ecs.TagPickup, func(a, b *ecs.Entity, ca, cb component.Collider) {
		calls++
		if a != player || b != pickup {
			t.Errorf("callback got (%v, %v), want (player, pickup)", a.ID(), b.ID())
		}
		if ca != a.Get(ecs.KindCollider) || cb != b.Get(ecs.KindCollider) {
			t.Error("colliders not swapped with their entities")
		}
	})

	cs.Update(frame)
	if calls != 1 {
		t.Fatalf("callback fired %d times in one frame, want 1", calls)
	}
	cs.Update(frame)
	if calls != 2 {
		t.Fatalf("callback fired %d times over two frames, want 2", calls)
	}
}

func TestBroadcastEventAndRecords(t *testing.T) {
	w, cs := newCollisionWorld(t)
	var got []CollisionDetected
	event.Subscribe(w.Bus(), func(ev CollisionDetected) { got = append(got, ev) })

	a := spawnCircle(w, 0, 0, 1, ecs.TagEnemy)
	b := spawnCircle(w, 1.5, 0, 1, ecs.TagProjectile)
	far := spawnCircle(w, 50, 50, 1, ecs.TagEnemy)

	cs.Update(frame)

	if len(got) != 1 || got[0].EntityA != a || got[0].EntityB != b {
		t.Fatalf("expected one broadcast for (a, b), got %d", len(got))
	}
	if got[0].Topic() != event.TopicCollisionDetected {
		t.Fatalf("topic = %q", got[0].Topic())
	}
	if len(cs.GetAllCollisions()) != 1 {
		t.Fatalf("GetAllCollisions = %d", len(cs.GetAllCollisions()))
	}
	if len(cs.GetCollisionsForEntity(b)) != 1 || len(cs.GetCollisionsForEntity(far)) != 0 {
		t.Fatal("GetCollisionsForEntity wrong")
	}
	byTags := cs.GetCollisionsByTags(ecs.TagProjectile, ecs.TagEnemy)
	if len(byTags) != 1 || byTags[0].EntityA != b || byTags[0].ColliderA != b.Get(ecs.KindCollider) {
		t.Fatal("GetCollisionsByTags should orient EntityA to the first tag")
	}

	// results are per frame only
	tr, _ := ecs.Get[*component.Transform](b, ecs.KindTransform)
	tr.X = 100
	cs.Update(frame)
	if len(cs.GetAllCollisions()) != 0 || len(cs.GetCollisionsForEntity(a)) != 0 {
		t.Fatal("previous frame's collisions retained")
	}
}

func TestOnlyActiveEntitiesWithBothComponents(t *testing.T) {
	w, cs := newCollisionWorld(t)
	spawnCircle(w, 0, 0, 5)
	sleeping := spawnCircle(w, 0, 0, 5)
	sleeping.SetActive(false)
	w.Entities().Create(func(e *ecs.Entity) { e.Add(&component.Transform{}) })
	w.Entities().Create(func(e *ecs.Entity) { e.Add(&component.CircleCollider{Radius: 5}) })

	cs.Update(frame)
	if n := len(cs.GetAllCollisions()); n != 0 {
		t.Fatalf("expected no collisions, got %d", n)
	}

	spawnCircle(w, 1, 1, 5)
	cs.Update(frame)
	if n := len(cs.GetAllCollisions()); n != 1 {
		t.Fatalf("expected 1 collision, got %d", n)
	}
}

func TestAllPairsTestedOnce(t *testing.T) {
	w, cs := newCollisionWorld(t)
	for i := 0; i < 5; i++ {
		spawnCircle(w, float64(i)*0.1, 0, 1)
	}
	cs.Update(frame)
	if n := len(cs.GetAllCollisions()); n != 10 {
		t.Fatalf("5 overlapping bodies should give 10 pairs, got %d", n)
	}
}

func TestMultipleCallbacksAndUnregister(t *testing.T) {
	w, cs := newCollisionWorld(t)
	spawnCircle(w, 0, 0, 1, ecs.TagEnemy)
	spawnCircle(w, 0, 0, 1, ecs.TagMine)

	var order []string
	first := cs.RegisterCollisionCallback(ecs.TagEnemy, ecs.TagMine, func(*ecs.Entity, *ecs.Entity, component.Collider, component.Collider) {
		order = append(order, "first")
	})
	second := cs.RegisterCollisionCallback(ecs.TagMine, ecs.TagEnemy, func(*ecs.Entity, *ecs.Entity, component.Collider, component.Collider) {
		order = append(order, "second")
	})
	if cs.CallbackCount(ecs.TagMine, ecs.TagEnemy) != 2 || cs.CallbackPairs() != 1 {
		t.Fatal("both registrations should share one order-independent key")
	}

	cs.Update(frame)
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("fired %v", order)
	}

	cs.UnregisterCollisionCallback(ecs.TagMine, ecs.TagEnemy, first)
	cs.UnregisterCollisionCallback(ecs.TagEnemy, ecs.TagMine, 12345)
	if cs.CallbackCount(ecs.TagEnemy, ecs.TagMine) != 1 {
		t.Fatal("unregister removed the wrong callback")
	}
	cs.UnregisterCollisionCallback(ecs.TagEnemy, ecs.TagMine, second)
	if cs.CallbackPairs() != 0 {
		t.Fatal("empty pair key should be deleted")
	}

	order = nil
	cs.Update(frame)
	if len(order) != 0 {
		t.Fatalf("unregistered callbacks fired: %v", order)
	}
}

func TestSharedTagsFireOncePerPair(t *testing.T) {
	w, cs := newCollisionWorld(t)
	spawnCircle(w, 0, 0, 1, ecs.TagEnemy, ecs.TagPickup)
	spawnCircle(w, 0, 0, 1, ecs.TagEnemy, ecs.TagPickup)

	pairCalls, sameCalls := 0, 0
	cs.RegisterCollisionCallback(ecs.TagEnemy, ecs.TagPickup, func(a, b *ecs.Entity, _, _ component.Collider) {
		pairCalls++
	})
	cs.RegisterCollisionCallback(ecs.TagEnemy, ecs.TagEnemy, func(a, b *ecs.Entity, _, _ component.Collider) {
		sameCalls++
	})

	cs.Update(frame)
	if pairCalls != 1 || sameCalls != 1 {
		t.Fatalf("pair callback fired %d, same-tag callback fired %d; want 1 each", pairCalls, sameCalls)
	}
}

func TestPanickingCallbackIsIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	w := ecs.NewWorld(event.NewBus())
	cs := NewCollisionSystem(w.Queries(), w.Bus(), zap.New(core))

	spawnCircle(w, 0, 0, 1, ecs.TagPlayer)
	spawnCircle(w, 0, 0, 1, ecs.TagEnemy)
	spawnCircle(w, 0, 0, 1, ecs.TagEnemy)

	calls := 0
	cs.RegisterCollisionCallback(ecs.TagPlayer, ecs.TagEnemy, func(*ecs.Entity, *ecs.Entity, component.Collider, component.Collider) {
		panic("boom")
	})
	cs.RegisterCollisionCallback(ecs.TagPlayer, ecs.TagEnemy, func(*ecs.Entity, *ecs.Entity, component.Collider, component.Collider) {
		calls++
	})

	cs.Update(frame)

	if calls != 2 {
		t.Fatalf("later callbacks should still run for both pairs, ran %d", calls)
	}
	if n := logs.FilterMessage("collision callback panicked").Len(); n != 2 {
		t.Fatalf("expected 2 logged panics, got %d", n)
	}
	if len(cs.GetAllCollisions()) != 3 {
		t.Fatal("collision pass should complete despite panics")
	}
}

func TestFailFastWhenIsolationOff(t *testing.T) {
	w, cs := newCollisionWorld(t)
	cs.SetIsolation(false)
	spawnCircle(w, 0, 0, 1, ecs.TagPlayer)
	spawnCircle(w, 0, 0, 1, ecs.TagEnemy)
	cs.RegisterCollisionCallback(ecs.TagPlayer, ecs.TagEnemy, func(*ecs.Entity, *ecs.Entity, component.Collider, component.Collider) {
		panic("boom")
	})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to propagate")
		}
	}()
	cs.Update(frame)
}

func TestSnapshotTakenAtTopOfUpdate(t *testing.T) {
	w, cs := newCollisionWorld(t)
	spawnCircle(w, 0, 0, 1, ecs.TagPlayer)
	spawnCircle(w, 0, 0, 1, ecs.TagEnemy)

	spawned := 0
	cs.RegisterCollisionCallback(ecs.TagPlayer, ecs.TagEnemy, func(*ecs.Entity, *ecs.Entity, component.Collider, component.Collider) {
		if spawned == 0 {
			spawnCircle(w, 0, 0, 1, ecs.TagEnemy)
			spawned++
		}
	})

	cs.Update(frame)
	if n := len(cs.GetAllCollisions()); n != 1 {
		t.Fatalf("entity created mid-pass was tested this frame: %d collisions", n)
	}
	cs.Update(frame)
	if n := len(cs.GetAllCollisions()); n != 3 {
		t.Fatalf("next frame should see all three bodies, got %d", n)
	}
}

func TestRecycledDuringDispatchIsNotTested(t *testing.T) {
	w, cs := newCollisionWorld(t)
	pools := data.DefaultPoolTable().With(data.PoolDef{Name: data.PoolProjectile, Initial: 1, Max: 1})
	state := world.NewState(w, pools, zap.NewNop())

	spawnCircle(w, 0, 0, 1, ecs.TagEnemy)
	spawnCircle(w, 0, 0, 1, ecs.TagEnemy)
	shot, _ := state.Projectiles.Spawn(world.ProjectileSpec{Radius: 1, TTL: time.Second})

	hits := 0
	cs.RegisterCollisionCallback(ecs.TagProjectile, ecs.TagEnemy, func(p, _ *ecs.Entity, _, _ component.Collider) {
		hits++
		state.Despawn(p)
		again, ok := state.Projectiles.Spawn(world.ProjectileSpec{X: 200, Radius: 1, TTL: time.Second})
		if !ok || again != shot {
			t.Fatal("pool of one should hand back the same entity")
		}
	})

	cs.Update(frame)
	if hits != 1 {
		t.Fatalf("recycled projectile hit %d enemies in one pass, want 1", hits)
	}
	if n := len(cs.GetCollisionsForEntity(shot)); n != 1 {
		t.Fatalf("recycled projectile recorded in %d collisions, want 1", n)
	}

	cs.Update(frame)
	if hits != 1 || len(cs.GetCollisionsForEntity(shot)) != 0 {
		t.Fatal("projectile re-fired to x=200 should not touch enemies at the origin")
	}
}

func TestDeactivatedDuringDispatchStopsPairing(t *testing.T) {
	w, cs := newCollisionWorld(t)
	shot := spawnCircle(w, 0, 0, 1, ecs.TagProjectile)
	spawnCircle(w, 0, 0, 1, ecs.TagEnemy)
	spawnCircle(w, 0, 0, 1, ecs.TagEnemy)

	hits := 0
	cs.RegisterCollisionCallback(ecs.TagProjectile, ecs.TagEnemy, func(p, _ *ecs.Entity, _, _ component.Collider) {
		hits++
		w.MarkForDestruction(p)
	})

	cs.Update(frame)
	if hits != 1 || !shot.Registered() {
		t.Fatalf("projectile hit %d enemies, want 1 before it is removed", hits)
	}
}

func TestEntityCountWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := ecs.NewWorld(event.NewBus())
	cs := NewCollisionSystem(w.Queries(), w.Bus(), zap.New(core))
	cs.SetEntityWarning(2)

	for i := 0; i < 3; i++ {
		spawnCircle(w, float64(i)*10, 0, 1)
	}
	cs.Update(frame)
	cs.Update(frame)
	if logs.Len() != 1 {
		t.Fatalf("expected a single warning, got %d", logs.Len())
	}
}
