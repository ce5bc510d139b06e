package serverpackets

import (
	"time"

	"github.com/udisondev/mabigo/internal/gameserver/packet"
	"github.com/udisondev/mabigo/internal/protocol"
	"github.com/udisondev/mabigo/internal/protocol/op"
)

// ChannelLoginR answers ChannelLogin.
//
// Body on success: 1 (byte), controlled entity id (long), server time (long, unix ms).
// Body on failure: 0 (byte).
type ChannelLoginR struct {
	Success    bool
	EntityID   int64
	ServerTime time.Time
}

// Message encodes the packet.
func (p ChannelLoginR) Message() protocol.Message {
	w := packet.NewWriter(17)
	w.WriteBool(p.Success)
	if p.Success {
		w.WriteLong(p.EntityID)
		w.WriteLong(p.ServerTime.UnixMilli())
	}
	// Sent to the login dummy id, as the client has no creature yet.
	return protocol.Message{Op: op.ChannelLoginR, EntityID: LoginEntityID, Body: w.Bytes()}
}

// LoginEntityID addresses messages not meant for a creature.
const LoginEntityID int64 = 0x1000000000000010

// DisconnectRequestR acknowledges a DisconnectRequest.
type DisconnectRequestR struct {
	EntityID int64
}

// Message encodes the packet.
func (p DisconnectRequestR) Message() protocol.Message {
	return protocol.Message{Op: op.DisconnectRequestR, EntityID: p.EntityID, Body: []byte{1}}
}
