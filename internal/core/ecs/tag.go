package ecs

import (
	"fmt"
	"math/bits"
)

// Tag is a coarse classification label, orthogonal to component composition.
type Tag uint8

const (
	TagPlayer Tag = iota
	TagEnemy
	TagPickup
	TagAlly
	TagMine
	TagProjectile
	TagEnemyProjectile
	TagSummon

	tagCount
)

var tagNames = [tagCount]string{
	TagPlayer:          "player",
	TagEnemy:           "enemy",
	TagPickup:          "pickup",
	TagAlly:            "ally",
	TagMine:            "mine",
	TagProjectile:      "projectile",
	TagEnemyProjectile: "enemy_projectile",
	TagSummon:          "summon",
}

func (t Tag) Valid() bool { return t < tagCount }

func (t Tag) String() string {
	if t.Valid() {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// ParseTag maps a tag name as written in data files and scripts.
func ParseTag(name string) (Tag, bool) {
	for i, n := range tagNames {
		if n == name {
			return Tag(i), true
		}
	}
	return 0, false
}

// TagSet is a bitmask of tags.
type TagSet uint64

func NewTagSet(tags ...Tag) TagSet {
	var s TagSet
	for _, t := range tags {
		s = s.With(t)
	}
	return s
}

func (s TagSet) Has(t Tag) bool       { return t.Valid() && s&(1<<t) != 0 }
func (s TagSet) Len() int             { return bits.OnesCount64(uint64(s)) }
func (s TagSet) Without(t Tag) TagSet { return s &^ (1 << t) }

func (s TagSet) With(t Tag) TagSet {
	if !t.Valid() {
		return s
	}
	return s | 1<<t
}

// Each calls fn for every tag in ascending order.
func (s TagSet) Each(fn func(Tag)) {
	for s != 0 {
		t := Tag(bits.TrailingZeros64(uint64(s)))
		fn(t)
		s &^= 1 << t
	}
}

func (s TagSet) Slice() []Tag {
	out := make([]Tag, 0, s.Len())
	s.Each(func(t Tag) { out = append(out, t) })
	return out
}

func (s TagSet) String() string {
	out := "["
	first := true
	s.Each(func(t Tag) {
		if !first {
			out += " "
		}
		out += t.String()
		first = false
	})
	return out + "]"
}
