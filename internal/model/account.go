package model

import "time"

// Account is a player account bound to a channel session.
type Account struct {
	ID         string
	SessionKey int64
	Authority  int16
	LastLogin  time.Time
	LastIP     string

	// Characters are the live creatures of the account spawned in this session.
	Characters []*Creature
}

// CharacterRecord is the persisted form of a character.
type CharacterRecord struct {
	EntityID int64
	Name     string
	Race     Race
	RegionID int32
	Skills   []SkillInfo
}
