package component

import "github.com/swarmfall/game/internal/core/ecs"

// Transform is the spatial extent of an entity: center position plus size.
// Pure data; systems mutate it.
type Transform struct {
	X, Y          float64
	Width, Height float64
}

func (*Transform) Kind() ecs.Kind { return ecs.KindTransform }

// Velocity in world units per second.
type Velocity struct {
	X, Y float64
}

func (*Velocity) Kind() ecs.Kind { return ecs.KindVelocity }
