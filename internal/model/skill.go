package model

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/udisondev/mabigo/internal/data"
)

// ConditionCount is the number of training conditions of a skill rank.
const ConditionCount = data.ConditionCount

// RankableExperience is the scaled experience a skill needs to be advanced (100.0).
const RankableExperience = 100_000

// experienceScale converts between experience points and the stored fixed-point value.
const experienceScale = 1000

// placeholderConditionCount is the counter value before rank data is loaded.
// Never zero, a zero counter reads as a completed condition.
const placeholderConditionCount = 1

// SkillCatalog is the read-only source of skill rank data.
type SkillCatalog interface {
	Find(id uint16) *data.SkillData
}

// SkillFlags are the visibility and eligibility bits of a skill.
type SkillFlags struct {
	Shown         bool
	Rankable      bool
	ShowCondition [ConditionCount]bool
}

// SkillInfo is the persisted and transmitted state of a skill.
// Experience is scaled by 1000.
type SkillInfo struct {
	ID             SkillID
	Rank           SkillRank
	MaxRank        SkillRank
	Experience     int32
	ConditionCount [ConditionCount]int16
	Flags          SkillFlags
}

// Skill is one skill of one creature.
//
// Skill is not safe for concurrent use; mutation goes through CreatureSkills,
// which serializes it per creature.
type Skill struct {
	creature *Creature
	catalog  SkillCatalog
	race     Race

	info      SkillInfo
	skillData *data.SkillData
	rankData  *data.SkillRankData
}

// NewSkill creates a skill for creature at rank and loads its rank data.
// Fails if the catalog has no data for the skill or no rank data for race.
func NewSkill(creature *Creature, catalog SkillCatalog, id SkillID, rank SkillRank, race Race) (*Skill, error) {
	s := &Skill{
		creature: creature,
		catalog:  catalog,
		race:     race,
		info: SkillInfo{
			ID:      id,
			Rank:    rank,
			MaxRank: rank,
			Flags:   SkillFlags{Shown: true},
		},
	}
	for i := range s.info.ConditionCount {
		s.info.ConditionCount[i] = placeholderConditionCount
	}

	if err := s.loadRankData(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the skill id.
func (s *Skill) ID() SkillID { return s.info.ID }

// Rank returns the current rank.
func (s *Skill) Rank() SkillRank { return s.info.Rank }

// Creature returns the owner of the skill.
func (s *Skill) Creature() *Creature { return s.creature }

// Info returns a copy of the skill state.
func (s *Skill) Info() SkillInfo { return s.info }

// RankData returns the rank data in use, which may be a substitute
// when the current rank has no data of its own.
func (s *Skill) RankData() *data.SkillRankData { return s.rankData }

// IsRankable reports whether the skill has enough experience and is below max rank.
func (s *Skill) IsRankable() bool {
	return s.info.Experience >= RankableExperience && s.info.Rank < s.info.MaxRank
}

// loadRankData resolves the rank data for the current rank and refreshes
// max rank and condition counters from it. Conditions the rank declares
// visible are revealed; revealed conditions stay revealed.
// Nothing is changed when resolution fails.
func (s *Skill) loadRankData() error {
	skillData := s.catalog.Find(uint16(s.info.ID))
	if skillData == nil {
		return fmt.Errorf("loading rank data for skill %d: %w", s.info.ID, data.ErrSkillNotFound)
	}

	rankData := skillData.RankData(uint8(s.info.Rank), int32(s.race))
	if rankData == nil {
		rankData = skillData.FirstRankData(int32(s.race))
		if rankData == nil {
			return fmt.Errorf("loading rank data for skill %d@%s race %d: %w",
				s.info.ID, s.info.Rank, s.race, data.ErrRankNotFound)
		}
		slog.Warn("missing rank data, using substitute",
			"skill", s.info.ID,
			"rank", s.info.Rank,
			"substitute", SkillRank(rankData.Rank),
			"race", s.race)
	}

	s.skillData = skillData
	s.rankData = rankData
	s.info.MaxRank = SkillRank(skillData.MaxRank)
	for i, c := range rankData.Conditions {
		s.info.ConditionCount[i] = c.Count
		if c.Visible {
			s.info.Flags.ShowCondition[i] = true
		}
	}
	return nil
}

// ChangeRank sets a new rank, resets experience and reloads rank data.
// Condition visibility carries over from the previous rank.
// On error the skill keeps its previous state.
func (s *Skill) ChangeRank(rank SkillRank) error {
	prev := s.info
	s.info.Rank = rank
	if err := s.loadRankData(); err != nil {
		s.info = prev
		return err
	}

	s.info.Experience = 0
	s.info.Flags.Rankable = false
	return nil
}

// Train counts amount trainings of condition (1-9) and notifies the
// controller when experience was gained. Only characters train skills.
func (s *Skill) Train(condition, amount int) {
	if s.creature == nil || !s.creature.IsCharacter() {
		return
	}

	if amount > 0 {
		if condition < 1 || condition > ConditionCount {
			slog.Error("unknown training condition",
				"skill", s.info.ID,
				"condition", condition,
				"creature", s.creature.EntityID())
			return
		}

		i := condition - 1
		s.info.ConditionCount[i] = int16(max(0, int(s.info.ConditionCount[i])-amount))
		s.info.Flags.ShowCondition[i] = true
	}

	gained := s.UpdateExperience()
	if gained <= 0 {
		return
	}

	if ctrl := s.creature.Controller(); ctrl != nil {
		ctrl.NotifyTrainingProgress(s.creature, s, gained)
	}
}

// UpdateExperience recomputes experience from the condition counters
// and returns the gained amount.
func (s *Skill) UpdateExperience() float64 {
	old := float64(s.info.Experience) / experienceScale

	var exp float64
	for i, c := range s.rankData.Conditions {
		exp += float64(c.Count-s.info.ConditionCount[i]) * c.Exp
	}
	s.info.Experience = int32(math.Round(exp * experienceScale))

	if s.IsRankable() {
		s.info.Flags.Rankable = true
	}

	return exp - old
}

// Restore applies persisted training progress on top of freshly loaded
// rank data. Counters are clamped to the rank's condition counts.
func (s *Skill) Restore(info SkillInfo) {
	for i, c := range s.rankData.Conditions {
		s.info.ConditionCount[i] = min(max(info.ConditionCount[i], 0), c.Count)
		if info.Flags.ShowCondition[i] {
			s.info.Flags.ShowCondition[i] = true
		}
	}
	s.UpdateExperience()
}
