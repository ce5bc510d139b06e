package db

import (
	"context"
	"testing"

	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/testutil"
)

// SaveAccount runs on every disconnect and autosave tick.
func BenchmarkAccountRepository_SaveAccount(b *testing.B) {
	repo := NewAccountRepository(setupTestDB(b))
	ctx := context.Background()

	if err := repo.CreateAccount(ctx, &model.Account{ID: "bench"}); err != nil {
		b.Fatalf("creating account: %v", err)
	}
	if err := repo.CreateCharacter(ctx, "bench", &model.CharacterRecord{
		EntityID: 0x10000000000100,
		Name:     "BenchHero",
		Race:     model.RaceHumanMale,
		RegionID: 1,
	}); err != nil {
		b.Fatalf("creating character: %v", err)
	}

	c := model.NewCharacter(0x10000000000100, "BenchHero", model.RaceHumanMale)
	catalog := testutil.SkillCatalog()
	for _, id := range []model.SkillID{model.SkillCombatMastery, model.SkillDefense} {
		if _, err := c.Skills().Give(catalog, id, model.RankNovice); err != nil {
			b.Fatalf("giving skill %d: %v", id, err)
		}
	}
	acc := &model.Account{ID: "bench", Characters: []*model.Creature{c}}

	b.ResetTimer()
	for b.Loop() {
		if err := repo.SaveAccount(ctx, acc); err != nil {
			b.Fatalf("SaveAccount failed: %v", err)
		}
	}
}

func BenchmarkAccountRepository_LoadCharacter(b *testing.B) {
	repo := NewAccountRepository(setupTestDB(b))
	ctx := context.Background()

	info := model.SkillInfo{ID: model.SkillCombatMastery, Rank: model.RankNovice}
	if err := repo.CreateAccount(ctx, &model.Account{ID: "bench"}); err != nil {
		b.Fatalf("creating account: %v", err)
	}
	if err := repo.CreateCharacter(ctx, "bench", &model.CharacterRecord{
		EntityID: 0x10000000000101,
		Name:     "BenchLoader",
		Race:     model.RaceElfFem,
		RegionID: 1,
		Skills:   []model.SkillInfo{info},
	}); err != nil {
		b.Fatalf("creating character: %v", err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := repo.LoadCharacter(ctx, "bench", 0x10000000000101); err != nil {
				b.Errorf("LoadCharacter failed: %v", err)
			}
		}
	})
}
