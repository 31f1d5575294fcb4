package ecs

import "fmt"

// Kind identifies a component slot on an entity. The set is closed: a new
// component type needs a new Kind here.
type Kind uint8

const (
	KindTransform Kind = iota
	KindVelocity
	KindCollider
	KindLifetime
	KindHealth
	KindProjectile
	KindMine
	KindSummon
	KindPickup

	kindCount
)

var kindNames = [kindCount]string{
	KindTransform:  "transform",
	KindVelocity:   "velocity",
	KindCollider:   "collider",
	KindLifetime:   "lifetime",
	KindHealth:     "health",
	KindProjectile: "projectile",
	KindMine:       "mine",
	KindSummon:     "summon",
	KindPickup:     "pickup",
}

func (k Kind) Valid() bool { return k < kindCount }

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Component is implemented by every data struct attached to an Entity.
// Kind must be constant for a given concrete type.
type Component interface {
	Kind() Kind
}

// Disposer is implemented by components that hold resources to release when
// their entity is destroyed.
type Disposer interface {
	Dispose()
}
