package serverpackets

import (
	"github.com/udisondev/mabigo/internal/gameserver/packet"
	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/protocol"
	"github.com/udisondev/mabigo/internal/protocol/op"
)

// SkillInfoSize is the encoded size of a skill info block.
const SkillInfoSize = 2 + 1 + 1 + 4 + model.ConditionCount*2 + 2

// WriteSkillInfo encodes a skill's state as a fixed-size block:
//   - id (short)
//   - rank, max rank (byte)
//   - experience (int, scaled by 1000)
//   - condition counters 1-9 (short each)
//   - flags (short, see protocol.EncodeSkillFlags)
func WriteSkillInfo(w *packet.Writer, info model.SkillInfo) {
	w.WriteShort(int16(info.ID))
	_ = w.WriteByte(byte(info.Rank))
	_ = w.WriteByte(byte(info.MaxRank))
	w.WriteInt(info.Experience)
	for _, c := range info.ConditionCount {
		w.WriteShort(c)
	}
	w.WriteShort(int16(protocol.EncodeSkillFlags(info.Flags)))
}

// ReadSkillInfo decodes a block written by WriteSkillInfo.
func ReadSkillInfo(r *packet.Reader) (model.SkillInfo, error) {
	var info model.SkillInfo

	id, err := r.ReadShort()
	if err != nil {
		return info, err
	}
	rank, err := r.ReadByte()
	if err != nil {
		return info, err
	}
	maxRank, err := r.ReadByte()
	if err != nil {
		return info, err
	}
	exp, err := r.ReadInt()
	if err != nil {
		return info, err
	}
	for i := range info.ConditionCount {
		if info.ConditionCount[i], err = r.ReadShort(); err != nil {
			return info, err
		}
	}
	flags, err := r.ReadShort()
	if err != nil {
		return info, err
	}

	info.ID = model.SkillID(uint16(id))
	info.Rank = model.SkillRank(rank)
	info.MaxRank = model.SkillRank(maxRank)
	info.Experience = exp
	info.Flags = protocol.DecodeSkillFlags(uint16(flags))
	return info, nil
}

// SkillInfo sends the full state of one skill.
type SkillInfo struct {
	EntityID int64
	Info     model.SkillInfo
}

// Message encodes the packet.
func (p SkillInfo) Message() protocol.Message {
	w := packet.NewWriter(SkillInfoSize)
	WriteSkillInfo(w, p.Info)
	return protocol.Message{Op: op.SkillInfo, EntityID: p.EntityID, Body: w.Bytes()}
}

// SkillTrainingUp tells the client a skill gained training experience.
//
// Body: skill info, gained experience (float), visible (byte, always 1).
type SkillTrainingUp struct {
	EntityID int64
	Info     model.SkillInfo
	Gained   float32
}

// Message encodes the packet.
func (p SkillTrainingUp) Message() protocol.Message {
	w := packet.NewWriter(SkillInfoSize + 5)
	WriteSkillInfo(w, p.Info)
	w.WriteFloat(p.Gained)
	_ = w.WriteByte(1)
	return protocol.Message{Op: op.SkillTrainingUp, EntityID: p.EntityID, Body: w.Bytes()}
}

// SkillRankUp is the response to a successful SkillAdvance.
type SkillRankUp struct {
	EntityID int64
	Info     model.SkillInfo
}

// Message encodes the packet.
func (p SkillRankUp) Message() protocol.Message {
	w := packet.NewWriter(SkillInfoSize)
	WriteSkillInfo(w, p.Info)
	return protocol.Message{Op: op.SkillRankUp, EntityID: p.EntityID, Body: w.Bytes()}
}

// SkillComplete acknowledges a completed skill use.
//
// Body: skill id (short).
type SkillComplete struct {
	EntityID int64
	ID       model.SkillID
}

// Message encodes the packet.
func (p SkillComplete) Message() protocol.Message {
	w := packet.NewWriter(2)
	w.WriteShort(int16(p.ID))
	return protocol.Message{Op: op.SkillComplete, EntityID: p.EntityID, Body: w.Bytes()}
}
