package pool

import (
	"testing"

	"github.com/swarmfall/game/internal/core/event"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type shell struct{ n int }

func counting() (func() *shell, *int) {
	built := 0
	return func() *shell {
		built++
		return &shell{n: built}
	}, &built
}

func TestPreallocation(t *testing.T) {
	factory, built := counting()
	p := New(Config{Name: "shells", Initial: 4, Max: 8}, factory, nil, nil)

	if *built != 4 || p.FreeCount() != 4 || p.ActiveCount() != 0 {
		t.Fatalf("expected 4 eager instances, built=%d free=%d", *built, p.FreeCount())
	}
	for i := 0; i < 4; i++ {
		if _, ok := p.Get(); !ok {
			t.Fatal("Get from pre-allocated pool failed")
		}
	}
	if *built != 4 {
		t.Fatalf("free instances should be reused before building, built=%d", *built)
	}
	if _, ok := p.Get(); !ok || *built != 5 {
		t.Fatalf("pool should grow lazily below max, built=%d", *built)
	}
}

func TestExhaustionAndRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bus := event.NewBus()
	var exhausted []event.PoolExhausted
	event.Subscribe(bus, func(ev event.PoolExhausted) { exhausted = append(exhausted, ev) })

	factory, _ := counting()
	p := New(Config{Name: "mines", Initial: 2, Max: 3}, factory, bus, zap.New(core))

	var got []*shell
	for i := 0; i < 3; i++ {
		s, ok := p.Get()
		if !ok {
			t.Fatalf("get %d failed below max", i+1)
		}
		got = append(got, s)
	}
	if s, ok := p.Get(); ok || s != nil {
		t.Fatal("fourth Get should fail at max")
	}
	if logs.FilterMessage("pool exhausted").Len() != 1 {
		t.Fatalf("expected one exhaustion warning, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.ContextMap()["pool"] != "mines" {
		t.Fatalf("warning missing pool name: %v", entry.ContextMap())
	}

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(exhausted) != 1 || exhausted[0].Pool != "mines" || exhausted[0].Max != 3 {
		t.Fatalf("unexpected exhaustion events %+v", exhausted)
	}

	p.Release(got[1])
	s, ok := p.Get()
	if !ok || s != got[1] {
		t.Fatal("Get after Release should hand back the released instance")
	}
}

func TestHardMaxPlusOne(t *testing.T) {
	factory, _ := counting()
	const limit = 5
	p := New(Config{Name: "bolts", Initial: 1, Max: limit}, factory, nil, zap.NewNop())

	for i := 1; i <= limit+1; i++ {
		_, ok := p.Get()
		if want := i <= limit; ok != want {
			t.Fatalf("get %d: ok=%v, want %v", i, ok, want)
		}
	}
}

func TestReleaseIgnoresForeignAndDouble(t *testing.T) {
	factory, _ := counting()
	p := New(Config{Name: "x", Initial: 1, Max: 2}, factory, nil, nil)

	a, _ := p.Get()
	p.Release(a)
	p.Release(a)
	p.Release(&shell{})

	if p.ActiveCount() != 0 || p.FreeCount() != 1 {
		t.Fatalf("active=%d free=%d, want 0/1", p.ActiveCount(), p.FreeCount())
	}
}

func TestEachInstanceInExactlyOneList(t *testing.T) {
	factory, _ := counting()
	p := New(Config{Name: "x", Initial: 3, Max: 6}, factory, nil, nil)

	var held []*shell
	for i := 0; i < 6; i++ {
		s, _ := p.Get()
		held = append(held, s)
	}
	p.Release(held[0])
	p.Release(held[3])
	p.Release(held[5])

	seen := map[*shell]int{}
	for _, s := range p.ActiveObjects() {
		seen[s]++
	}
	for _, s := range p.free {
		seen[s]++
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 distinct instances, got %d", len(seen))
	}
	for s, n := range seen {
		if n != 1 {
			t.Fatalf("instance %d present %d times", s.n, n)
		}
		if p.Contains(s) == (s == held[0] || s == held[3] || s == held[5]) {
			t.Fatalf("Contains wrong for instance %d", s.n)
		}
	}
}

func TestReleaseAll(t *testing.T) {
	factory, _ := counting()
	p := New(Config{Name: "x", Initial: 0, Max: 4}, factory, nil, nil)
	for i := 0; i < 4; i++ {
		p.Get()
	}
	snap := p.ActiveObjects()

	p.ReleaseAll()

	if p.ActiveCount() != 0 || p.FreeCount() != 4 {
		t.Fatalf("active=%d free=%d after ReleaseAll", p.ActiveCount(), p.FreeCount())
	}
	if len(snap) != 4 {
		t.Fatal("snapshot must not alias the live active list")
	}
	for i := 0; i < 4; i++ {
		if _, ok := p.Get(); !ok {
			t.Fatal("released instances should be reusable")
		}
	}
}

func TestMaxBelowInitialIsRaised(t *testing.T) {
	factory, _ := counting()
	p := New(Config{Name: "x", Initial: 3, Max: 1}, factory, nil, nil)
	if p.Max() != 3 {
		t.Fatalf("Max = %d, want 3", p.Max())
	}
}
