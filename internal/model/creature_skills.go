package model

import (
	"fmt"
	"slices"
	"sync"
)

// CreatureSkills is the skill set of one creature.
// All mutation of the creature's skills is serialized by its mutex.
type CreatureSkills struct {
	creature *Creature

	mu     sync.Mutex
	skills map[SkillID]*Skill
}

func newCreatureSkills(c *Creature) *CreatureSkills {
	return &CreatureSkills{
		creature: c,
		skills:   make(map[SkillID]*Skill, 16),
	}
}

// Give creates the skill at rank and adds it, replacing an existing one.
func (cs *CreatureSkills) Give(catalog SkillCatalog, id SkillID, rank SkillRank) (*Skill, error) {
	skill, err := NewSkill(cs.creature, catalog, id, rank, cs.creature.Race())
	if err != nil {
		return nil, fmt.Errorf("giving skill %d to creature %d: %w", id, cs.creature.EntityID(), err)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.skills[id] = skill
	return skill, nil
}

// Get returns the skill with id, or nil.
func (cs *CreatureSkills) Get(id SkillID) *Skill {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.skills[id]
}

// Has reports whether the creature has the skill at rank or higher.
func (cs *CreatureSkills) Has(id SkillID, rank SkillRank) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s, ok := cs.skills[id]
	return ok && s.info.Rank >= rank
}

// Train trains a condition of the skill with id. Unknown skills are ignored.
func (cs *CreatureSkills) Train(id SkillID, condition, amount int) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if s, ok := cs.skills[id]; ok {
		s.Train(condition, amount)
	}
}

// ChangeRank changes the rank of the skill with id.
func (cs *CreatureSkills) ChangeRank(id SkillID, rank SkillRank) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s, ok := cs.skills[id]
	if !ok {
		return fmt.Errorf("creature %d has no skill %d", cs.creature.EntityID(), id)
	}
	return s.ChangeRank(rank)
}

// Advance raises the skill one rank if it is rankable.
// Returns the new rank and whether the skill advanced.
func (cs *CreatureSkills) Advance(id SkillID) (SkillRank, bool, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s, ok := cs.skills[id]
	if !ok {
		return 0, false, fmt.Errorf("creature %d has no skill %d", cs.creature.EntityID(), id)
	}
	if !s.IsRankable() {
		return s.info.Rank, false, nil
	}
	if err := s.ChangeRank(s.info.Rank + 1); err != nil {
		return s.info.Rank, false, err
	}
	return s.info.Rank, true, nil
}

// Count returns the number of skills.
func (cs *CreatureSkills) Count() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.skills)
}

// Infos returns a snapshot of all skill states ordered by skill id.
func (cs *CreatureSkills) Infos() []SkillInfo {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	infos := make([]SkillInfo, 0, len(cs.skills))
	for _, s := range cs.skills {
		infos = append(infos, s.info)
	}
	slices.SortFunc(infos, func(a, b SkillInfo) int { return int(a.ID) - int(b.ID) })
	return infos
}

// Clear drops all skills.
func (cs *CreatureSkills) Clear() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	clear(cs.skills)
}
