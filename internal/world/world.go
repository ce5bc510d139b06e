package world

import (
	"fmt"
	"sync"
)

// World is the registry of regions of a channel.
type World struct {
	mu      sync.RWMutex
	regions map[int32]*Region
}

// New creates an empty world.
func New() *World {
	return &World{regions: make(map[int32]*Region, 64)}
}

// AddRegion registers r. Fails if a region with the same id exists.
func (w *World) AddRegion(r *Region) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.regions[r.ID()]; ok {
		return fmt.Errorf("region %d already registered", r.ID())
	}
	w.regions[r.ID()] = r
	return nil
}

// GetRegion returns the region with id, or nil.
func (w *World) GetRegion(id int32) *Region {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.regions[id]
}

// RegionCount returns the number of registered regions.
func (w *World) RegionCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.regions)
}

// CreatureCount returns the number of creatures over all regions.
func (w *World) CreatureCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, r := range w.regions {
		n += r.CreatureCount()
	}
	return n
}
