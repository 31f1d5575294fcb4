package ecs

import "github.com/swarmfall/game/internal/core/event"

// Entity lifecycle events, published synchronously by EntityManager.

type EntityCreated struct{ Entity *Entity }
type EntityAdded struct{ Entity *Entity }
type EntityDestroyed struct{ Entity *Entity }
type EntityRemoved struct{ Entity *Entity }

// EntityChanged reports a component or active-flag change on a registered entity.
type EntityChanged struct{ Entity *Entity }

func (EntityCreated) Topic() string   { return event.TopicEntityCreated }
func (EntityAdded) Topic() string     { return event.TopicEntityAdded }
func (EntityDestroyed) Topic() string { return event.TopicEntityDestroyed }
func (EntityRemoved) Topic() string   { return event.TopicEntityRemoved }
func (EntityChanged) Topic() string   { return event.TopicEntityChanged }
