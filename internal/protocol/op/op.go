// Package op is the opcode registry of the Mabinogi wire protocol.
// Codes are partitioned by the server role that handles them.
package op

import "fmt"

// Role is the server role an opcode belongs to.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleLogin
	RoleChannel
	RoleInternal
)

func (r Role) String() string {
	switch r {
	case RoleLogin:
		return "login"
	case RoleChannel:
		return "channel"
	case RoleInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Login server.
const (
	ClientIdent             uint32 = 0x0FD1020A
	ClientIdentR            uint32 = 0x1F
	Login                   uint32 = 0x0FD12002
	LoginR                  uint32 = 0x23
	ChannelStatus           uint32 = 0x26
	CharacterInfoRequest    uint32 = 0x29
	CharacterInfoRequestR   uint32 = 0x2A
	CreateCharacter         uint32 = 0x2B
	CreateCharacterR        uint32 = 0x2C
	DeleteCharacterRequest  uint32 = 0x2D
	DeleteCharacterRequestR uint32 = 0x2E
	ChannelInfoRequest      uint32 = 0x2F
	ChannelInfoRequestR     uint32 = 0x30
	DeleteCharacter         uint32 = 0x35
	DeleteCharacterR        uint32 = 0x36
	RecoverCharacter        uint32 = 0x37
	RecoverCharacterR       uint32 = 0x38
	NameCheck               uint32 = 0x39
	NameCheckR              uint32 = 0x3A
	AccountInfoRequest      uint32 = 0x47
	AccountInfoRequestR     uint32 = 0x48
	DisconnectInform        uint32 = 0x4D
)

// Channel server.
const (
	ChannelLogin                 uint32 = 0x4E22
	ChannelLoginR                uint32 = 0x4E23
	DisconnectRequest            uint32 = 0x4E24
	DisconnectRequestR           uint32 = 0x4E25
	RequestClientDisconnect      uint32 = 0x4E26
	Disappear                    uint32 = 0x4E2A
	ChannelCharacterInfoRequest  uint32 = 0x5208
	ChannelCharacterInfoRequestR uint32 = 0x5209
	EntityAppears                uint32 = 0x520C
	EntityDisappears             uint32 = 0x520D
	Chat                         uint32 = 0x526C
	Notice                       uint32 = 0x526D
	MsgBox                       uint32 = 0x526F
	WhisperChat                  uint32 = 0x5273
	NPCTalkStart                 uint32 = 0x55F0
	NPCTalkStartR                uint32 = 0x55F1
	NPCTalkEnd                   uint32 = 0x55F2
	NPCTalkEndR                  uint32 = 0x55F3
	NPCTalkPartner               uint32 = 0x55F8
	NPCTalkPartnerR              uint32 = 0x55F9
	NPCTalkSelectEnd             uint32 = 0x59FB
	NPCTalkKeyword               uint32 = 0x5DC4
	NPCTalkKeywordR              uint32 = 0x5DC5
	WarpRegion                   uint32 = 0x6599
	SkillInfo                    uint32 = 0x6979
	SkillTrainingUp              uint32 = 0x697C
	SkillAdvance                 uint32 = 0x697E
	SkillRankUp                  uint32 = 0x697F
	SkillPrepare                 uint32 = 0x6982
	SkillReady                   uint32 = 0x6983
	SkillUse                     uint32 = 0x6986
	SkillComplete                uint32 = 0x6987
	SkillCancel                  uint32 = 0x6989
	SkillStart                   uint32 = 0x698A
	SkillStop                    uint32 = 0x698B
	SkillSilentCancel            uint32 = 0x698D
	SkillStackSet                uint32 = 0x6991
	SkillStackUpdate             uint32 = 0x6992
	NPCTalk                      uint32 = 0x13882
	NPCTalkSelect                uint32 = 0x13883
	GMCPOpen                     uint32 = 0x1D589
	GMCPClose                    uint32 = 0x1D58A
	Walk                         uint32 = 0x0FF23431
	Run                          uint32 = 0x0F213303
)

// Internal communication between login and channel servers.
const (
	InternalServerIdentify  uint32 = 0x42420001
	InternalServerIdentifyR uint32 = 0x42420002
	InternalChannelStatus   uint32 = 0x42420101
)

type entry struct {
	name string
	role Role
}

var registry = map[uint32]entry{}

func register(role Role, names map[uint32]string) {
	for code, name := range names {
		if prev, ok := registry[code]; ok {
			panic(fmt.Sprintf("op: duplicate code 0x%X (%s, %s)", code, prev.name, name))
		}
		registry[code] = entry{name: name, role: role}
	}
}

func init() {
	register(RoleLogin, map[uint32]string{
		ClientIdent: "ClientIdent", ClientIdentR: "ClientIdentR",
		Login: "Login", LoginR: "LoginR",
		ChannelStatus:        "ChannelStatus",
		CharacterInfoRequest: "CharacterInfoRequest", CharacterInfoRequestR: "CharacterInfoRequestR",
		CreateCharacter: "CreateCharacter", CreateCharacterR: "CreateCharacterR",
		DeleteCharacterRequest: "DeleteCharacterRequest", DeleteCharacterRequestR: "DeleteCharacterRequestR",
		ChannelInfoRequest: "ChannelInfoRequest", ChannelInfoRequestR: "ChannelInfoRequestR",
		DeleteCharacter: "DeleteCharacter", DeleteCharacterR: "DeleteCharacterR",
		RecoverCharacter: "RecoverCharacter", RecoverCharacterR: "RecoverCharacterR",
		NameCheck: "NameCheck", NameCheckR: "NameCheckR",
		AccountInfoRequest: "AccountInfoRequest", AccountInfoRequestR: "AccountInfoRequestR",
		DisconnectInform: "DisconnectInform",
	})
	register(RoleChannel, map[uint32]string{
		ChannelLogin: "ChannelLogin", ChannelLoginR: "ChannelLoginR",
		DisconnectRequest: "DisconnectRequest", DisconnectRequestR: "DisconnectRequestR",
		RequestClientDisconnect:     "RequestClientDisconnect",
		Disappear:                   "Disappear",
		ChannelCharacterInfoRequest: "ChannelCharacterInfoRequest", ChannelCharacterInfoRequestR: "ChannelCharacterInfoRequestR",
		EntityAppears: "EntityAppears", EntityDisappears: "EntityDisappears",
		Chat: "Chat", Notice: "Notice", MsgBox: "MsgBox", WhisperChat: "WhisperChat",
		NPCTalkStart: "NPCTalkStart", NPCTalkStartR: "NPCTalkStartR",
		NPCTalkEnd: "NPCTalkEnd", NPCTalkEndR: "NPCTalkEndR",
		NPCTalkPartner: "NPCTalkPartner", NPCTalkPartnerR: "NPCTalkPartnerR",
		NPCTalkSelectEnd: "NPCTalkSelectEnd",
		NPCTalkKeyword:   "NPCTalkKeyword", NPCTalkKeywordR: "NPCTalkKeywordR",
		WarpRegion: "WarpRegion",
		SkillInfo:  "SkillInfo", SkillTrainingUp: "SkillTrainingUp",
		SkillAdvance: "SkillAdvance", SkillRankUp: "SkillRankUp",
		SkillPrepare: "SkillPrepare", SkillReady: "SkillReady",
		SkillUse: "SkillUse", SkillComplete: "SkillComplete",
		SkillCancel: "SkillCancel", SkillStart: "SkillStart", SkillStop: "SkillStop",
		SkillSilentCancel: "SkillSilentCancel",
		SkillStackSet:     "SkillStackSet", SkillStackUpdate: "SkillStackUpdate",
		NPCTalk: "NPCTalk", NPCTalkSelect: "NPCTalkSelect",
		GMCPOpen: "GMCPOpen", GMCPClose: "GMCPClose",
		Walk: "Walk", Run: "Run",
	})
	register(RoleInternal, map[uint32]string{
		InternalServerIdentify:  "Internal.ServerIdentify",
		InternalServerIdentifyR: "Internal.ServerIdentifyR",
		InternalChannelStatus:   "Internal.ChannelStatus",
	})
}

// Name returns the symbolic name of code, or its hex form if unknown.
func Name(code uint32) string {
	if e, ok := registry[code]; ok {
		return e.name
	}
	return fmt.Sprintf("0x%X", code)
}

// RoleOf returns the server role code belongs to.
func RoleOf(code uint32) Role {
	return registry[code].role
}
