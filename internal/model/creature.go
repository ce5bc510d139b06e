package model

import (
	"context"
	"sync"
)

// CreatureKind tells characters apart from world-driven creatures.
type CreatureKind int8

const (
	CreatureKindCharacter CreatureKind = iota // player character
	CreatureKindNPC                           // NPCs and monsters
)

// Region is the spatial container a creature is placed in.
type Region interface {
	ID() int32
	RemoveCreature(c *Creature)
}

// Controller is whoever drives a creature: a live network session or an
// inert stand-in for creatures without one.
type Controller interface {
	NotifyTrainingProgress(c *Creature, skill *Skill, gained float64)
	NpcSession() *NpcSession
	Kill()
	CleanUp(ctx context.Context)
}

// Creature is an entity in the world that owns skills.
type Creature struct {
	entityID int64
	kind     CreatureKind

	mu         sync.RWMutex
	name       string
	race       Race
	dialog     string // NPCs only
	region     Region
	controller Controller // not owned
	disposed   bool

	skills *CreatureSkills
}

// NewCreature creates a creature with an empty skill set.
func NewCreature(entityID int64, kind CreatureKind, name string, race Race) *Creature {
	c := &Creature{
		entityID: entityID,
		kind:     kind,
		name:     name,
		race:     race,
	}
	c.skills = newCreatureSkills(c)
	return c
}

// NewCharacter creates a player character.
func NewCharacter(entityID int64, name string, race Race) *Creature {
	return NewCreature(entityID, CreatureKindCharacter, name, race)
}

// NewNPC creates a world-driven creature.
func NewNPC(entityID int64, name string, race Race) *Creature {
	return NewCreature(entityID, CreatureKindNPC, name, race)
}

// EntityID returns the unique entity id (immutable).
func (c *Creature) EntityID() int64 {
	return c.entityID
}

// Kind returns the creature kind.
func (c *Creature) Kind() CreatureKind {
	return c.kind
}

// IsCharacter reports whether the creature is a player character.
func (c *Creature) IsCharacter() bool {
	return c.kind == CreatureKindCharacter
}

// Name returns the creature name.
func (c *Creature) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Race returns the creature race.
func (c *Creature) Race() Race {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.race
}

// Dialog returns the key of the dialog the NPC opens when talked to.
// Empty for characters and for NPCs that cannot be talked to.
func (c *Creature) Dialog() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dialog
}

// SetDialog sets the dialog key.
func (c *Creature) SetDialog(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = key
}

// Region returns the region the creature is placed in, or nil.
func (c *Creature) Region() Region {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.region
}

// SetRegion places the creature into r. nil clears the placement.
func (c *Creature) SetRegion(r Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.region = r
}

// Controller returns the creature's controller, or nil.
func (c *Creature) Controller() Controller {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.controller
}

// SetController sets the back-reference to the controlling session.
func (c *Creature) SetController(ctrl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

// Skills returns the creature's skill set.
func (c *Creature) Skills() *CreatureSkills {
	return c.skills
}

// IsDisposed reports whether Dispose was called.
func (c *Creature) IsDisposed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.disposed
}

// Dispose releases the creature's resources: skills are dropped and the
// region and controller references are cleared. Safe to call more than once.
func (c *Creature) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.region = nil
	c.controller = nil
	c.mu.Unlock()

	c.skills.Clear()
}
