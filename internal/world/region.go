package world

import (
	"sync"
	"sync/atomic"

	"github.com/udisondev/mabigo/internal/model"
)

// Region is a map area creatures are placed in (a Mabinogi region, e.g. Tir Chonaill).
type Region struct {
	id   int32
	name string

	creatures sync.Map // entityID -> *model.Creature
	count     atomic.Int32

	// version is incremented on every add/remove
	version atomic.Uint64
}

// NewRegion creates an empty region.
func NewRegion(id int32, name string) *Region {
	return &Region{id: id, name: name}
}

// ID returns the region id.
func (r *Region) ID() int32 {
	return r.id
}

// Name returns the region name.
func (r *Region) Name() string {
	return r.name
}

// Version returns the current region version (incremented on Add/Remove).
func (r *Region) Version() uint64 {
	return r.version.Load()
}

// AddCreature places c into the region (concurrent-safe).
func (r *Region) AddCreature(c *model.Creature) {
	if _, loaded := r.creatures.Swap(c.EntityID(), c); !loaded {
		r.count.Add(1)
	}
	c.SetRegion(r)
	r.version.Add(1)
}

// RemoveCreature removes c from the region (concurrent-safe).
// Removing a creature that is not in the region is a no-op.
func (r *Region) RemoveCreature(c *model.Creature) {
	if _, loaded := r.creatures.LoadAndDelete(c.EntityID()); !loaded {
		return
	}
	r.count.Add(-1)
	if c.Region() == model.Region(r) {
		c.SetRegion(nil)
	}
	r.version.Add(1)
}

// GetCreature returns the creature with entityID, or nil.
func (r *Region) GetCreature(entityID int64) *model.Creature {
	v, ok := r.creatures.Load(entityID)
	if !ok {
		return nil
	}
	return v.(*model.Creature)
}

// CreatureCount returns the number of creatures in the region.
func (r *Region) CreatureCount() int {
	return int(r.count.Load())
}

// ForEachCreature iterates over all creatures in the region.
// If fn returns false, iteration stops.
func (r *Region) ForEachCreature(fn func(*model.Creature) bool) {
	r.creatures.Range(func(_, value any) bool {
		return fn(value.(*model.Creature))
	})
}
