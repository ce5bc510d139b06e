package gameserver

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/mabigo/internal/gameserver/packet"
	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/protocol"
	"github.com/udisondev/mabigo/internal/protocol/op"
	"github.com/udisondev/mabigo/internal/testutil"
	"github.com/udisondev/mabigo/internal/world"
)

const (
	testAccount    = "admin"
	testSessionKey = int64(0x0123456789ABCDEF)
	testCharacter  = int64(0x10000000000001)
	testNPC        = int64(0x10F00000000001)
	testRegion     = int32(1)
)

// memStore is an in-memory AccountStore.
type memStore struct {
	mu         sync.Mutex
	accounts   map[string]model.Account
	characters map[int64]memCharacter
	saved      []string
	skills     []int // skills seen by each save
	saveErr    error

	// saveHook, when set, runs at the start of every SaveAccount call.
	saveHook func(*model.Account)
}

type memCharacter struct {
	accountID string
	rec       model.CharacterRecord
}

func newMemStore() *memStore {
	return &memStore{
		accounts:   make(map[string]model.Account),
		characters: make(map[int64]memCharacter),
	}
}

func (s *memStore) addAccount(acc model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acc.ID] = acc
}

func (s *memStore) addCharacter(accountID string, rec model.CharacterRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[rec.EntityID] = memCharacter{accountID: accountID, rec: rec}
}

func (s *memStore) LoadAccount(_ context.Context, accountID string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

func (s *memStore) LoadCharacter(_ context.Context, accountID string, entityID int64) (*model.CharacterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.characters[entityID]
	if !ok || c.accountID != accountID {
		return nil, nil
	}
	rec := c.rec
	return &rec, nil
}

func (s *memStore) SaveAccount(_ context.Context, acc *model.Account) error {
	s.mu.Lock()
	hook := s.saveHook
	s.mu.Unlock()
	if hook != nil {
		hook(acc)
	}

	skills := 0
	for _, c := range acc.Characters {
		skills += c.Skills().Count()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, acc.ID)
	s.skills = append(s.skills, skills)
	return s.saveErr
}

func (s *memStore) setSaveHook(fn func(*model.Account)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveHook = fn
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *memStore) savedSkills() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.skills)
}

var errSaveFailed = errors.New("save failed")

// fixture is a handler wired to an in-memory store and a one-region world
// holding a single NPC.
type fixture struct {
	store   *memStore
	world   *world.World
	region  *world.Region
	npc     *model.Creature
	manager *ClientManager
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	store.addAccount(model.Account{ID: testAccount, SessionKey: testSessionKey})

	// Persisted counters: Combat Mastery has 6 of 10 trainings of
	// condition 1 done, Defense is untrained.
	progress := model.SkillInfo{ID: model.SkillCombatMastery, Rank: model.RankNovice}
	progress.ConditionCount[0] = 4
	progress.ConditionCount[1] = 5
	untrained := model.SkillInfo{ID: model.SkillDefense, Rank: model.RankNovice}
	untrained.ConditionCount[0] = 10
	store.addCharacter(testAccount, model.CharacterRecord{
		EntityID: testCharacter,
		Name:     "Tester",
		Race:     model.RaceHumanMale,
		RegionID: testRegion,
		Skills:   []model.SkillInfo{progress, untrained},
	})

	w := world.New()
	region := world.NewRegion(testRegion, "Tir Chonaill")
	require.NoError(t, w.AddRegion(region))

	npc := model.NewNPC(testNPC, "Nao", 0)
	npc.SetDialog("nao")
	npc.SetController(NewDummyClient())
	region.AddCreature(npc)

	manager := NewClientManager()
	return &fixture{
		store:   store,
		world:   w,
		region:  region,
		npc:     npc,
		manager: manager,
		handler: NewHandler(store, testutil.SkillCatalog(), w, manager),
	}
}

func newTestClient(t *testing.T, saver AccountSaver) (*ChannelClient, *testutil.MockConn) {
	t.Helper()
	conn := testutil.NewMockConn()
	c, err := NewChannelClient(conn, saver, nil, 64, time.Second)
	require.NoError(t, err)
	c.StartWriter()
	return c, conn
}

// sent closes the client and returns every message it wrote.
func sent(t *testing.T, c *ChannelClient, conn *testutil.MockConn) []protocol.Message {
	t.Helper()
	require.NoError(t, c.Close())
	msgs, err := conn.Messages()
	require.NoError(t, err)
	return msgs
}

func findMessage(msgs []protocol.Message, code uint32) (protocol.Message, bool) {
	for _, m := range msgs {
		if m.Op == code {
			return m, true
		}
	}
	return protocol.Message{}, false
}

func loginMessage(accountID string, key, entityID int64) protocol.Message {
	w := packet.NewWriter(64)
	w.WriteString(accountID)
	w.WriteLong(key)
	w.WriteLong(entityID)
	return protocol.Message{Op: op.ChannelLogin, EntityID: 0, Body: w.Bytes()}
}

func skillAdvanceMessage(entityID int64, id model.SkillID) protocol.Message {
	w := packet.NewWriter(2)
	w.WriteShort(int16(id))
	return protocol.Message{Op: op.SkillAdvance, EntityID: entityID, Body: w.Bytes()}
}

func skillCompleteMessage(entityID int64, id model.SkillID) protocol.Message {
	w := packet.NewWriter(2)
	w.WriteShort(int16(id))
	return protocol.Message{Op: op.SkillComplete, EntityID: entityID, Body: w.Bytes()}
}

func npcMessage(code uint32, entityID, npcID int64) protocol.Message {
	w := packet.NewWriter(8)
	w.WriteLong(npcID)
	return protocol.Message{Op: code, EntityID: entityID, Body: w.Bytes()}
}

func login(t *testing.T, f *fixture, c *ChannelClient) *model.Creature {
	t.Helper()
	keepOpen, err := f.handler.HandleMessage(context.Background(), c, loginMessage(testAccount, testSessionKey, testCharacter))
	require.NoError(t, err)
	require.True(t, keepOpen)
	cr := c.Controlling()
	require.NotNil(t, cr)
	return cr
}
