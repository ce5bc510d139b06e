package model

import "strconv"

// SkillID identifies a skill definition in the catalog.
type SkillID uint16

// Some well known skills.
const (
	SkillCombatMastery SkillID = 23002
	SkillDefense       SkillID = 20001
	SkillSmash         SkillID = 20002
	SkillWindmill      SkillID = 20003
	SkillFirstAid      SkillID = 10004
)

// SkillRank is the progression tier of a skill. Ranks are ordered:
// Novice < F < ... < A < 9 < ... < 1 < Dan1 < Dan2 < Dan3.
type SkillRank uint8

const (
	RankNovice SkillRank = iota
	RankF
	RankE
	RankD
	RankC
	RankB
	RankA
	Rank9
	Rank8
	Rank7
	Rank6
	Rank5
	Rank4
	Rank3
	Rank2
	Rank1
	Dan1
	Dan2
	Dan3
)

func (r SkillRank) String() string {
	switch {
	case r == RankNovice:
		return "Novice"
	case r <= RankA:
		return string(rune('F' - (r - RankF)))
	case r <= Rank1:
		return strconv.Itoa(int(9 - (r - Rank9)))
	case r <= Dan3:
		return "Dan" + strconv.Itoa(int(r-Dan1+1))
	default:
		return "Rank(" + strconv.Itoa(int(r)) + ")"
	}
}

// Race identifies a playable or NPC race. The two low bits carry gender,
// so Race&^3 is the race family.
type Race int32

const (
	RaceHuman     Race = 10000
	RaceHumanMale Race = 10001
	RaceHumanFem  Race = 10002
	RaceElf       Race = 9000
	RaceElfMale   Race = 9001
	RaceElfFem    Race = 9002
	RaceGiant     Race = 8000
	RaceGiantMale Race = 8001
	RaceGiantFem  Race = 8002
)
