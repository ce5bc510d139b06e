package data

import (
	"errors"
	"slices"
	"sync"
)

// ConditionCount is the number of training conditions every skill rank has.
const ConditionCount = 9

// AnyRace is the race key of rank tables shared by all races.
const AnyRace int32 = 0

var (
	// ErrSkillNotFound is returned when the catalog has no entry for a skill id.
	ErrSkillNotFound = errors.New("skill data not found")

	// ErrRankNotFound is returned when no rank data is reachable for a race.
	ErrRankNotFound = errors.New("skill rank data not found")
)

// SkillCondition is one training condition of a rank.
// Count is the number of times it can be trained, Exp the experience per training.
type SkillCondition struct {
	Count   int16
	Exp     float64
	Visible bool
}

// SkillRankData describes one rank of a skill for one race.
type SkillRankData struct {
	Rank       uint8
	Race       int32
	Conditions [ConditionCount]SkillCondition
}

// SkillData is the catalog entry of a skill: its declared maximum rank
// and the rank tables per race.
type SkillData struct {
	ID      uint16
	Name    string
	MaxRank uint8

	// race -> rank -> data
	ranks map[int32]map[uint8]*SkillRankData
}

// NewSkillData creates an empty catalog entry.
func NewSkillData(id uint16, name string, maxRank uint8) *SkillData {
	return &SkillData{
		ID:      id,
		Name:    name,
		MaxRank: maxRank,
		ranks:   make(map[int32]map[uint8]*SkillRankData),
	}
}

// AddRankData registers rank data, replacing an existing entry for the same race and rank.
func (s *SkillData) AddRankData(rd *SkillRankData) {
	table, ok := s.ranks[rd.Race]
	if !ok {
		table = make(map[uint8]*SkillRankData)
		s.ranks[rd.Race] = table
	}
	table[rd.Rank] = rd
}

// raceTable resolves the rank table for race: exact race, then the race
// family (gender bits cleared), then the table shared by all races.
func (s *SkillData) raceTable(race int32) map[uint8]*SkillRankData {
	if t, ok := s.ranks[race]; ok {
		return t
	}
	if t, ok := s.ranks[race&^3]; ok {
		return t
	}
	return s.ranks[AnyRace]
}

// RankData returns the data for rank and race, or nil.
func (s *SkillData) RankData(rank uint8, race int32) *SkillRankData {
	t := s.raceTable(race)
	if t == nil {
		return nil
	}
	return t[rank]
}

// FirstRankData returns the lowest rank available for race, or nil.
func (s *SkillData) FirstRankData(race int32) *SkillRankData {
	t := s.raceTable(race)
	if len(t) == 0 {
		return nil
	}
	ranks := make([]uint8, 0, len(t))
	for r := range t {
		ranks = append(ranks, r)
	}
	return t[slices.Min(ranks)]
}

// RankCount returns the number of rank entries over all races.
func (s *SkillData) RankCount() int {
	n := 0
	for _, t := range s.ranks {
		n += len(t)
	}
	return n
}

// SkillDb is the read-only skill catalog. Safe for concurrent reads
// once loading is done.
type SkillDb struct {
	mu     sync.RWMutex
	skills map[uint16]*SkillData
}

// NewSkillDb creates an empty catalog.
func NewSkillDb() *SkillDb {
	return &SkillDb{skills: make(map[uint16]*SkillData, 256)}
}

// Add registers a skill entry.
func (db *SkillDb) Add(sd *SkillData) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.skills[sd.ID] = sd
}

// Find returns the entry for id, or nil if the skill is unknown.
func (db *SkillDb) Find(id uint16) *SkillData {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.skills[id]
}

// Count returns the number of skills in the catalog.
func (db *SkillDb) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.skills)
}
