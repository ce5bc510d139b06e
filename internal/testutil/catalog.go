package testutil

import (
	"github.com/udisondev/mabigo/internal/data"
	"github.com/udisondev/mabigo/internal/model"
)

// SkillCatalog returns a small catalog for tests:
//
//   - Combat Mastery, max rank 1. Novice: condition 1 is 10 x 5.0 (visible),
//     condition 2 is 5 x 2.0 (hidden). Rank F: condition 1 is 20 x 2.5.
//   - Defense, max rank F. Novice: condition 1 is 10 x 15.0. Rank F: condition 1 is 1 x 0.
func SkillCatalog() *data.SkillDb {
	db := data.NewSkillDb()

	cm := data.NewSkillData(uint16(model.SkillCombatMastery), "Combat Mastery", uint8(model.Rank1))
	novice := &data.SkillRankData{Rank: uint8(model.RankNovice), Race: data.AnyRace}
	novice.Conditions[0] = data.SkillCondition{Count: 10, Exp: 5.0, Visible: true}
	novice.Conditions[1] = data.SkillCondition{Count: 5, Exp: 2.0}
	cm.AddRankData(novice)
	rankF := &data.SkillRankData{Rank: uint8(model.RankF), Race: data.AnyRace}
	rankF.Conditions[0] = data.SkillCondition{Count: 20, Exp: 2.5, Visible: true}
	cm.AddRankData(rankF)
	db.Add(cm)

	def := data.NewSkillData(uint16(model.SkillDefense), "Defense", uint8(model.RankF))
	defNovice := &data.SkillRankData{Rank: uint8(model.RankNovice), Race: data.AnyRace}
	defNovice.Conditions[0] = data.SkillCondition{Count: 10, Exp: 15.0, Visible: true}
	def.AddRankData(defNovice)
	defF := &data.SkillRankData{Rank: uint8(model.RankF), Race: data.AnyRace}
	defF.Conditions[0] = data.SkillCondition{Count: 1, Exp: 0, Visible: true}
	def.AddRankData(defF)
	db.Add(def)

	return db
}
