package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/mabigo/internal/model"
)

func TestWorld_Regions(t *testing.T) {
	w := New()
	require.NoError(t, w.AddRegion(NewRegion(1, "Tir Chonaill")))
	require.NoError(t, w.AddRegion(NewRegion(14, "Dunbarton")))
	assert.Error(t, w.AddRegion(NewRegion(1, "Duplicate")))

	assert.Equal(t, 2, w.RegionCount())
	assert.Equal(t, "Dunbarton", w.GetRegion(14).Name())
	assert.Nil(t, w.GetRegion(99))

	w.GetRegion(1).AddCreature(model.NewNPC(1, "Sheep", 20))
	w.GetRegion(14).AddCreature(model.NewNPC(2, "Sheep", 20))
	assert.Equal(t, 2, w.CreatureCount())
}
