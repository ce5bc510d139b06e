package gameserver

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/mabigo/internal/config"
	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/world"
)

// BuildWorld creates the configured regions and spawns their NPCs. Every NPC
// is driven by its own DummyClient. NPC entity ids must be unique across
// the world.
func BuildWorld(regions []config.RegionEntry) (*world.World, error) {
	w := world.New()
	seen := make(map[int64]struct{})

	for _, r := range regions {
		region := world.NewRegion(r.ID, r.Name)
		if err := w.AddRegion(region); err != nil {
			return nil, fmt.Errorf("adding region %d: %w", r.ID, err)
		}

		for _, n := range r.NPCs {
			if n.EntityID == 0 {
				return nil, fmt.Errorf("region %d: npc %q has no entity id", r.ID, n.Name)
			}
			if _, dup := seen[n.EntityID]; dup {
				return nil, fmt.Errorf("region %d: duplicate npc entity id 0x%016X", r.ID, n.EntityID)
			}
			seen[n.EntityID] = struct{}{}

			npc := model.NewNPC(n.EntityID, n.Name, model.Race(n.Race))
			npc.SetDialog(n.Dialog)
			npc.SetController(NewDummyClient())
			region.AddCreature(npc)
		}

		slog.Debug("region loaded",
			"region", r.ID,
			"name", r.Name,
			"npcs", len(r.NPCs))
	}

	return w, nil
}
