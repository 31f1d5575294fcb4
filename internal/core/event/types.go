package event

// Topic names carried by event payloads. They appear in logs and match the
// names gameplay scripts use.
const (
	TopicEntityCreated     = "entity:created"
	TopicEntityAdded       = "entity:added"
	TopicEntityDestroyed   = "entity:destroyed"
	TopicEntityRemoved     = "entity:removed"
	TopicEntityChanged     = "entity:changed"
	TopicCollisionDetected = "collision:detected"
	TopicPoolExhausted     = "pool:exhausted"
)

// PoolExhausted is emitted when an object pool refuses Get at its hard maximum.
// Delivered on the next tick.
type PoolExhausted struct {
	Pool string
	Max  int
}

func (PoolExhausted) Topic() string { return TopicPoolExhausted }
