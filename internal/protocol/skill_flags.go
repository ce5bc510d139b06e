package protocol

import "github.com/udisondev/mabigo/internal/model"

// Bit positions of skill flags in their wire and persisted form.
const (
	SkillFlagShown          uint16 = 0x0001
	SkillFlagRankable       uint16 = 0x0002
	SkillFlagShowCondition1 uint16 = 0x0004 // condition n is SkillFlagShowCondition1 << (n-1)
)

// EncodeSkillFlags packs flags into their fixed-width form.
func EncodeSkillFlags(f model.SkillFlags) uint16 {
	var bits uint16
	if f.Shown {
		bits |= SkillFlagShown
	}
	if f.Rankable {
		bits |= SkillFlagRankable
	}
	for i, show := range f.ShowCondition {
		if show {
			bits |= SkillFlagShowCondition1 << i
		}
	}
	return bits
}

// DecodeSkillFlags unpacks flags. Unknown bits are ignored.
func DecodeSkillFlags(bits uint16) model.SkillFlags {
	f := model.SkillFlags{
		Shown:    bits&SkillFlagShown != 0,
		Rankable: bits&SkillFlagRankable != 0,
	}
	for i := range f.ShowCondition {
		f.ShowCondition[i] = bits&(SkillFlagShowCondition1<<i) != 0
	}
	return f
}
