package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/testutil"
	"github.com/udisondev/mabigo/internal/world"
)

func setupRepository(t *testing.T) *AccountRepository {
	t.Helper()
	return NewAccountRepository(setupTestDB(t))
}

func TestAccountRepository_LoadMissing(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	acc, err := repo.LoadAccount(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, acc)

	rec, err := repo.LoadCharacter(ctx, "nobody", 1)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestAccountRepository_RoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, &model.Account{ID: "admin", Authority: 99}))
	require.NoError(t, repo.UpdateSessionKey(ctx, "admin", 0x1234))

	info := model.SkillInfo{ID: model.SkillCombatMastery, Rank: model.RankNovice}
	info.ConditionCount[0] = 4
	info.Flags.Shown = true
	info.Flags.ShowCondition[0] = true
	require.NoError(t, repo.CreateCharacter(ctx, "admin", &model.CharacterRecord{
		EntityID: 0x10000000000001,
		Name:     "Tester",
		Race:     model.RaceHumanFem,
		RegionID: 1,
		Skills:   []model.SkillInfo{info},
	}))

	acc, err := repo.LoadAccount(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, int64(0x1234), acc.SessionKey)
	assert.Equal(t, int16(99), acc.Authority)
	assert.True(t, acc.LastLogin.IsZero())

	rec, err := repo.LoadCharacter(ctx, "admin", 0x10000000000001)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Tester", rec.Name)
	assert.Equal(t, model.RaceHumanFem, rec.Race)
	require.Len(t, rec.Skills, 1)
	assert.Equal(t, info.ConditionCount, rec.Skills[0].ConditionCount)
	assert.Equal(t, info.Flags, rec.Skills[0].Flags)

	// Another account's character is not visible.
	other, err := repo.LoadCharacter(ctx, "someone", 0x10000000000001)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestAccountRepository_SaveAccount(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, &model.Account{ID: "player"}))
	require.NoError(t, repo.CreateCharacter(ctx, "player", &model.CharacterRecord{
		EntityID: 0x10000000000002,
		Name:     "Saver",
		Race:     model.RaceGiantMale,
		RegionID: 1,
	}))

	catalog := testutil.SkillCatalog()
	c := model.NewCharacter(0x10000000000002, "Saver", model.RaceGiantMale)
	_, err := c.Skills().Give(catalog, model.SkillCombatMastery, model.RankNovice)
	require.NoError(t, err)
	c.Skills().Train(model.SkillCombatMastery, 1, 3)

	region := world.NewRegion(14, "Dunbarton")
	region.AddCreature(c)

	lastLogin := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	acc := &model.Account{ID: "player", LastLogin: lastLogin, LastIP: "10.0.0.1", Characters: []*model.Creature{c}}
	require.NoError(t, repo.SaveAccount(ctx, acc))
	// Saving twice rewrites skills instead of duplicating them.
	require.NoError(t, repo.SaveAccount(ctx, acc))

	loaded, err := repo.LoadAccount(ctx, "player")
	require.NoError(t, err)
	assert.True(t, lastLogin.Equal(loaded.LastLogin))
	assert.Equal(t, "10.0.0.1", loaded.LastIP)

	rec, err := repo.LoadCharacter(ctx, "player", 0x10000000000002)
	require.NoError(t, err)
	assert.Equal(t, int32(14), rec.RegionID)
	require.Len(t, rec.Skills, 1)
	want := c.Skills().Get(model.SkillCombatMastery).Info()
	got := rec.Skills[0]
	assert.Equal(t, want.Rank, got.Rank)
	assert.Equal(t, want.Experience, got.Experience)
	assert.Equal(t, want.ConditionCount, got.ConditionCount)
	assert.Equal(t, want.Flags, got.Flags)
}

func TestAccountRepository_SaveSkipsDisposedCharacter(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	info := model.SkillInfo{ID: model.SkillDefense, Rank: model.RankNovice}
	info.ConditionCount[0] = 3
	require.NoError(t, repo.CreateAccount(ctx, &model.Account{ID: "gone"}))
	require.NoError(t, repo.CreateCharacter(ctx, "gone", &model.CharacterRecord{
		EntityID: 0x10000000000003,
		Name:     "Leaver",
		Race:     model.RaceElfFem,
		RegionID: 1,
		Skills:   []model.SkillInfo{info},
	}))

	c := model.NewCharacter(0x10000000000003, "Leaver", model.RaceElfFem)
	c.Dispose()
	require.NoError(t, repo.SaveAccount(ctx, &model.Account{ID: "gone", Characters: []*model.Creature{c}}))

	rec, err := repo.LoadCharacter(ctx, "gone", 0x10000000000003)
	require.NoError(t, err)
	require.Len(t, rec.Skills, 1, "disposed character must not wipe saved skills")
	assert.Equal(t, int16(3), rec.Skills[0].ConditionCount[0])
}
