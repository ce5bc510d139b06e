package gameserver

import (
	"context"

	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/protocol"
)

// DummyClient controls creatures that have no connection, such as NPCs and
// monsters. Every operation is a no-op.
type DummyClient struct {
	npcSession *model.NpcSession
}

// NewDummyClient creates an inert controller.
func NewDummyClient() *DummyClient {
	return &DummyClient{npcSession: model.NewNpcSession()}
}

func (d *DummyClient) NotifyTrainingProgress(*model.Creature, *model.Skill, float64) {}

// Send discards m.
func (d *DummyClient) Send(protocol.Message) error { return nil }

func (d *DummyClient) NpcSession() *model.NpcSession { return d.npcSession }

func (d *DummyClient) Kill() {}

func (d *DummyClient) CleanUp(context.Context) {}

var _ model.Controller = (*DummyClient)(nil)
