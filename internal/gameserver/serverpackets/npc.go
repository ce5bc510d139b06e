package serverpackets

import (
	"github.com/udisondev/mabigo/internal/gameserver/packet"
	"github.com/udisondev/mabigo/internal/protocol"
	"github.com/udisondev/mabigo/internal/protocol/op"
)

// NPCTalkStartR answers NPCTalkStart.
// Body: success (byte), npc entity id (long, only on success).
type NPCTalkStartR struct {
	EntityID    int64
	Success     bool
	NpcEntityID int64
}

// Message encodes the packet.
func (p NPCTalkStartR) Message() protocol.Message {
	w := packet.NewWriter(9)
	w.WriteBool(p.Success)
	if p.Success {
		w.WriteLong(p.NpcEntityID)
	}
	return protocol.Message{Op: op.NPCTalkStartR, EntityID: p.EntityID, Body: w.Bytes()}
}

// NPCTalkEndR closes the dialog window.
// Body: close (byte, always 1), npc entity id (long), farewell message (string).
type NPCTalkEndR struct {
	EntityID    int64
	NpcEntityID int64
	Farewell    string
}

// Message encodes the packet.
func (p NPCTalkEndR) Message() protocol.Message {
	w := packet.NewWriter(16 + len(p.Farewell))
	_ = w.WriteByte(1)
	w.WriteLong(p.NpcEntityID)
	w.WriteString(p.Farewell)
	return protocol.Message{Op: op.NPCTalkEndR, EntityID: p.EntityID, Body: w.Bytes()}
}
