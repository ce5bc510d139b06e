package gameserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/mabigo/internal/gameserver/packet"
	"github.com/udisondev/mabigo/internal/gameserver/serverpackets"
	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/protocol"
	"github.com/udisondev/mabigo/internal/protocol/op"
	"github.com/udisondev/mabigo/internal/world"
)

// AccountStore loads and saves accounts and their characters.
// Load methods return nil with a nil error when nothing is found.
type AccountStore interface {
	AccountSaver
	LoadAccount(ctx context.Context, accountID string) (*model.Account, error)
	LoadCharacter(ctx context.Context, accountID string, entityID int64) (*model.CharacterRecord, error)
}

// Handler processes channel client messages.
type Handler struct {
	accounts      AccountStore
	catalog       model.SkillCatalog
	world         *world.World
	clientManager *ClientManager
}

// NewHandler creates a new message handler for channel clients.
func NewHandler(accounts AccountStore, catalog model.SkillCatalog, w *world.World, clientManager *ClientManager) *Handler {
	return &Handler{
		accounts:      accounts,
		catalog:       catalog,
		world:         w,
		clientManager: clientManager,
	}
}

// HandleMessage dispatches a decoded message to the handler of its opcode.
// Replies are queued on the client. Returns false when the connection must be
// closed. A *SecurityViolation error is fatal to the connection.
func (h *Handler) HandleMessage(ctx context.Context, client *ChannelClient, msg protocol.Message) (bool, error) {
	state := client.State()

	switch state {
	case ClientStateConnected:
		switch msg.Op {
		case op.ChannelLogin:
			return h.handleChannelLogin(ctx, client, msg)
		default:
			slog.Warn("invalid opcode before login",
				"op", op.Name(msg.Op),
				"client", client.IP())
			return false, nil
		}

	case ClientStateLoggedIn:
		switch msg.Op {
		case op.SkillAdvance:
			return h.handleSkillAdvance(client, msg)
		case op.SkillComplete:
			return h.handleSkillComplete(client, msg)
		case op.NPCTalkStart:
			return h.handleNPCTalkStart(client, msg)
		case op.NPCTalkEnd:
			return h.handleNPCTalkEnd(client, msg)
		case op.DisconnectRequest:
			return h.handleDisconnectRequest(client, msg)
		default:
			slog.Warn("unhandled opcode",
				"op", op.Name(msg.Op),
				"role", op.RoleOf(msg.Op),
				"state", state,
				"client", client.IP())
			return true, nil
		}

	default:
		return false, fmt.Errorf("invalid state: %v", state)
	}
}

// handleChannelLogin authenticates the connection and spawns the selected character.
//
// Body: account id (string), session key (long), character entity id (long).
func (h *Handler) handleChannelLogin(ctx context.Context, client *ChannelClient, msg protocol.Message) (bool, error) {
	r := packet.NewReader(msg.Body)
	accountID, err := r.ReadString()
	if err != nil {
		return false, fmt.Errorf("parsing ChannelLogin: %w", err)
	}
	sessionKey, err := r.ReadLong()
	if err != nil {
		return false, fmt.Errorf("parsing ChannelLogin: %w", err)
	}
	entityID, err := r.ReadLong()
	if err != nil {
		return false, fmt.Errorf("parsing ChannelLogin: %w", err)
	}

	fail := func(reason string) (bool, error) {
		slog.Warn("channel login failed",
			"reason", reason,
			"account", accountID,
			"character", fmt.Sprintf("0x%016X", entityID),
			"client", client.IP())
		_ = client.Send(serverpackets.ChannelLoginR{}.Message())
		return false, nil
	}

	account, err := h.accounts.LoadAccount(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("loading account %q: %w", accountID, err)
	}
	if account == nil {
		return fail("unknown account")
	}
	if account.SessionKey != sessionKey {
		return fail("invalid session key")
	}

	rec, err := h.accounts.LoadCharacter(ctx, accountID, entityID)
	if err != nil {
		return false, fmt.Errorf("loading character 0x%016X: %w", entityID, err)
	}
	if rec == nil {
		return fail("unknown character")
	}

	if !h.clientManager.Register(accountID, client) {
		return fail("account already logged in")
	}

	creature := h.spawnCharacter(rec)
	creature.SetController(client)

	account.LastLogin = time.Now()
	account.LastIP = client.IP()
	account.Characters = []*model.Creature{creature}

	client.SetAccount(account)
	client.AddCreature(creature)
	client.SetControlling(creature)
	client.SetState(ClientStateLoggedIn)

	if region := h.world.GetRegion(rec.RegionID); region != nil {
		region.AddCreature(creature)
	} else {
		slog.Warn("character region not found",
			"character", creature.Name(),
			"region", rec.RegionID)
	}

	if err := client.Send(serverpackets.ChannelLoginR{
		Success:    true,
		EntityID:   creature.EntityID(),
		ServerTime: time.Now(),
	}.Message()); err != nil {
		return false, fmt.Errorf("queueing ChannelLoginR: %w", err)
	}
	for _, info := range creature.Skills().Infos() {
		if err := client.Send(serverpackets.SkillInfo{EntityID: creature.EntityID(), Info: info}.Message()); err != nil {
			return false, fmt.Errorf("queueing SkillInfo: %w", err)
		}
	}

	slog.Info("character logged in",
		"account", accountID,
		"character", creature.Name(),
		"skills", creature.Skills().Count(),
		"client", client.IP())
	return true, nil
}

// spawnCharacter builds a creature from its record. Skills the catalog cannot
// resolve are logged and left out.
func (h *Handler) spawnCharacter(rec *model.CharacterRecord) *model.Creature {
	c := model.NewCharacter(rec.EntityID, rec.Name, rec.Race)
	for _, info := range rec.Skills {
		skill, err := c.Skills().Give(h.catalog, info.ID, info.Rank)
		if err != nil {
			slog.Error("failed to restore skill",
				"character", rec.Name,
				"skill", info.ID,
				"rank", info.Rank,
				"error", err)
			continue
		}
		skill.Restore(info)
	}
	return c
}

// handleSkillAdvance raises a rankable skill of an owned creature by one rank.
//
// Body: skill id (short).
func (h *Handler) handleSkillAdvance(client *ChannelClient, msg protocol.Message) (bool, error) {
	creature, err := client.GetCreatureSafe(msg.EntityID)
	if err != nil {
		return false, err
	}

	raw, err := packet.NewReader(msg.Body).ReadShort()
	if err != nil {
		return false, fmt.Errorf("parsing SkillAdvance: %w", err)
	}
	id := model.SkillID(uint16(raw))

	rank, advanced, err := creature.Skills().Advance(id)
	if err != nil {
		slog.Warn("skill advance failed",
			"character", creature.Name(),
			"skill", id,
			"error", err)
		return true, nil
	}
	if !advanced {
		slog.Warn("skill advance requested for skill that is not rankable",
			"character", creature.Name(),
			"skill", id,
			"rank", rank)
		return true, nil
	}

	skill := creature.Skills().Get(id)
	if skill == nil {
		return true, nil
	}
	if err := client.Send(serverpackets.SkillRankUp{EntityID: creature.EntityID(), Info: skill.Info()}.Message()); err != nil {
		return false, fmt.Errorf("queueing SkillRankUp: %w", err)
	}

	slog.Info("skill advanced",
		"character", creature.Name(),
		"skill", id,
		"rank", rank)
	return true, nil
}

// handleSkillComplete finishes a skill use of an owned creature and trains
// the skill's first condition, which counts successful uses. The training
// notification is queued by the creature's controller.
//
// Body: skill id (short).
func (h *Handler) handleSkillComplete(client *ChannelClient, msg protocol.Message) (bool, error) {
	creature, err := client.GetCreatureSafe(msg.EntityID)
	if err != nil {
		return false, err
	}

	raw, err := packet.NewReader(msg.Body).ReadShort()
	if err != nil {
		return false, fmt.Errorf("parsing SkillComplete: %w", err)
	}
	id := model.SkillID(uint16(raw))

	if creature.Skills().Get(id) == nil {
		slog.Warn("skill complete for skill the creature does not have",
			"character", creature.Name(),
			"skill", id)
		return true, nil
	}
	creature.Skills().Train(id, 1, 1)

	if err := client.Send(serverpackets.SkillComplete{EntityID: creature.EntityID(), ID: id}.Message()); err != nil {
		return false, fmt.Errorf("queueing SkillComplete: %w", err)
	}
	return true, nil
}

// handleNPCTalkStart opens the dialog of an NPC in the same region as an
// owned creature. NPCs without a dialog key cannot be talked to.
//
// Body: npc entity id (long).
func (h *Handler) handleNPCTalkStart(client *ChannelClient, msg protocol.Message) (bool, error) {
	creature, err := client.GetCreatureSafe(msg.EntityID)
	if err != nil {
		return false, err
	}

	npcID, err := packet.NewReader(msg.Body).ReadLong()
	if err != nil {
		return false, fmt.Errorf("parsing NPCTalkStart: %w", err)
	}

	var npc *model.Creature
	if cr := creature.Region(); cr != nil {
		if region := h.world.GetRegion(cr.ID()); region != nil {
			npc = region.GetCreature(npcID)
		}
	}
	if npc == nil || npc.IsCharacter() || npc.Dialog() == "" {
		slog.Warn("npc talk target not found",
			"character", creature.Name(),
			"npc", fmt.Sprintf("0x%016X", npcID))
		if err := client.Send(serverpackets.NPCTalkStartR{EntityID: creature.EntityID()}.Message()); err != nil {
			return false, fmt.Errorf("queueing NPCTalkStartR: %w", err)
		}
		return true, nil
	}

	client.NpcSession().Start(npc, npc.Dialog())
	slog.Debug("npc dialog opened",
		"character", creature.Name(),
		"npc", npc.Name(),
		"dialog", npc.Dialog())
	if err := client.Send(serverpackets.NPCTalkStartR{
		EntityID:    creature.EntityID(),
		Success:     true,
		NpcEntityID: npc.EntityID(),
	}.Message()); err != nil {
		return false, fmt.Errorf("queueing NPCTalkStartR: %w", err)
	}
	return true, nil
}

// handleNPCTalkEnd closes the open dialog.
//
// Body: npc entity id (long).
func (h *Handler) handleNPCTalkEnd(client *ChannelClient, msg protocol.Message) (bool, error) {
	creature, err := client.GetCreatureSafe(msg.EntityID)
	if err != nil {
		return false, err
	}

	npcID, err := packet.NewReader(msg.Body).ReadLong()
	if err != nil {
		return false, fmt.Errorf("parsing NPCTalkEnd: %w", err)
	}

	session := client.NpcSession()
	target := session.Target()
	if target == nil || target.EntityID() != npcID {
		slog.Warn("npc talk end without matching dialog",
			"character", creature.Name(),
			"npc", fmt.Sprintf("0x%016X", npcID))
	}
	session.Clear()

	if err := client.Send(serverpackets.NPCTalkEndR{
		EntityID:    creature.EntityID(),
		NpcEntityID: npcID,
	}.Message()); err != nil {
		return false, fmt.Errorf("queueing NPCTalkEndR: %w", err)
	}
	return true, nil
}

// handleDisconnectRequest acknowledges a client-initiated logout and closes the connection.
func (h *Handler) handleDisconnectRequest(client *ChannelClient, msg protocol.Message) (bool, error) {
	if _, err := client.GetCreatureSafe(msg.EntityID); err != nil {
		return false, err
	}
	_ = client.Send(serverpackets.DisconnectRequestR{EntityID: msg.EntityID}.Message())
	return false, nil
}
