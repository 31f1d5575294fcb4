package component

import "github.com/swarmfall/game/internal/core/ecs"

// Collider is the shape-agnostic overlap test consumed by the collision
// system. Sync copies the owner's Transform into the collider's world-space
// shape; IsCollidingWith then compares synced shapes only.
type Collider interface {
	ecs.Component
	Sync(t *Transform)
	IsCollidingWith(other Collider) bool
}

// CircleCollider is a circle centred on the transform plus an offset.
type CircleCollider struct {
	Radius           float64
	OffsetX, OffsetY float64

	cx, cy float64
}

func (*CircleCollider) Kind() ecs.Kind { return ecs.KindCollider }

func (c *CircleCollider) Sync(t *Transform) {
	c.cx = t.X + c.OffsetX
	c.cy = t.Y + c.OffsetY
}

// Center returns the synced world-space center.
func (c *CircleCollider) Center() (float64, float64) { return c.cx, c.cy }

func (c *CircleCollider) IsCollidingWith(other Collider) bool {
	switch o := other.(type) {
	case *CircleCollider:
		dx := c.cx - o.cx
		dy := c.cy - o.cy
		r := c.Radius + o.Radius
		return dx*dx+dy*dy < r*r
	case *BoxCollider:
		return circleBox(c, o)
	}
	return false
}

// BoxCollider is an axis-aligned box. Zero Width or Height takes the
// transform's extent on Sync.
type BoxCollider struct {
	Width, Height    float64
	OffsetX, OffsetY float64

	minX, minY, maxX, maxY float64
}

func (*BoxCollider) Kind() ecs.Kind { return ecs.KindCollider }

func (b *BoxCollider) Sync(t *Transform) {
	w, h := b.Width, b.Height
	if w == 0 {
		w = t.Width
	}
	if h == 0 {
		h = t.Height
	}
	cx := t.X + b.OffsetX
	cy := t.Y + b.OffsetY
	b.minX, b.maxX = cx-w/2, cx+w/2
	b.minY, b.maxY = cy-h/2, cy+h/2
}

// Bounds returns the synced world-space box.
func (b *BoxCollider) Bounds() (minX, minY, maxX, maxY float64) {
	return b.minX, b.minY, b.maxX, b.maxY
}

func (b *BoxCollider) IsCollidingWith(other Collider) bool {
	switch o := other.(type) {
	case *BoxCollider:
		return b.minX < o.maxX && o.minX < b.maxX &&
			b.minY < o.maxY && o.minY < b.maxY
	case *CircleCollider:
		return circleBox(o, b)
	}
	return false
}

func circleBox(c *CircleCollider, b *BoxCollider) bool {
	nx := clamp(c.cx, b.minX, b.maxX)
	ny := clamp(c.cy, b.minY, b.maxY)
	dx := c.cx - nx
	dy := c.cy - ny
	return dx*dx+dy*dy < c.Radius*c.Radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
