package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roomkit/internal/level"
)

var propertyPrefabs = []string{
	PotentialDoorMarker,
	ForcedDoorMarker,
	ItemSpawnMarker,
	NonSafeCellMarker,
	LightSpotMarker,
	"desk",
	"chair",
	"locker",
}

// drawRoom draws a rectangular room somewhere on the grid, with objects on
// random cells of the room.
func drawRoom(t *rapid.T) (*level.Graph, level.IntVector2, map[string]int) {
	origin := level.IntVector2{
		X: rapid.IntRange(-20, 40).Draw(t, "ox"),
		Z: rapid.IntRange(-20, 40).Draw(t, "oz"),
	}
	w := rapid.IntRange(1, 6).Draw(t, "w")
	h := rapid.IntRange(1, 6).Draw(t, "h")
	typ := rapid.SampledFrom([]level.RoomType{level.TypeRoom, level.TypeHall}).Draw(t, "type")

	n := rapid.IntRange(0, 12).Draw(t, "objects")
	counts := make(map[string]int)
	var objects []level.PlacedObject
	for i := 0; i < n; i++ {
		prefab := rapid.SampledFrom(propertyPrefabs).Draw(t, "prefab")
		x := origin.X + rapid.IntRange(0, w-1).Draw(t, "cx")
		z := origin.Z + rapid.IntRange(0, h-1).Draw(t, "cz")
		objects = append(objects, at(prefab, x, z))
		counts[prefab]++
	}

	g := &level.Graph{
		Tiles:         rectTiles(0, origin, w, h, 1),
		Rooms:         []*level.RoomMetadata{{Category: "Prop", Type: typ}},
		PlacedObjects: objects,
	}
	return g, origin, counts
}

func TestProperty_ExtractedRoomsAreNormalized(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g, _, counts := drawRoom(t)
		hall := g.Rooms[0].Type == level.TypeHall
		nObjects := len(g.PlacedObjects)
		squareShape := rapid.Bool().Draw(t, "square")

		ex := NewExtractor(NewNameRegistry(), NewBasicContainerFactory(), zap.NewNop())
		assets, err := ex.ExtractRooms(g, Options{SourceName: "prop", SquareShape: squareShape})
		require.NoError(t, err)
		require.Len(t, assets, 1)
		a := assets[0]

		minX, minZ := a.Cells[0].Position.X, a.Cells[0].Position.Z
		for _, c := range a.Cells {
			minX = min(minX, c.Position.X)
			minZ = min(minZ, c.Position.Z)
		}
		assert.Equal(t, 0, minX)
		assert.Equal(t, 0, minZ)

		cells := a.cellSet()
		for _, p := range a.EntitySafeCells {
			assert.True(t, cells.Has(p), "entity safe cell %s outside room", p)
		}
		for _, p := range a.EventSafeCells {
			assert.True(t, cells.Has(p), "event safe cell %s outside room", p)
		}

		for _, obj := range a.BasicObjects {
			assert.False(t, IsMarker(obj.Prefab), "marker %s left in basic objects", obj.Prefab)
		}

		assert.Len(t, a.ItemSpawnPoints, counts[ItemSpawnMarker])
		assert.Len(t, a.StandardLightCells, counts[LightSpotMarker])
		if hall {
			assert.Empty(t, a.EntitySafeCells)
			assert.Empty(t, a.ForcedDoorPositions)
			assert.NotEmpty(t, a.PotentialDoorPositions, "hallways always get border doors")
			assert.Nil(t, a.FunctionContainer)
		} else {
			assert.Len(t, a.PotentialDoorPositions, counts[PotentialDoorMarker])
			assert.Len(t, a.ForcedDoorPositions, counts[ForcedDoorMarker])
			// Every object is either consumed by exactly one marker field or kept.
			consumed := len(a.ItemSpawnPoints) + len(a.StandardLightCells) +
				len(a.PotentialDoorPositions) + len(a.ForcedDoorPositions) + counts[NonSafeCellMarker]
			assert.Equal(t, nObjects, consumed+len(a.BasicObjects))
			assert.NotNil(t, a.FunctionContainer)
		}

		assert.NoError(t, a.Validate())
	})
}

func TestProperty_SecretRoomCoversEveryCell(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g, origin, _ := drawRoom(t)
		g.Rooms[0].SecretCells = []level.IntVector2{origin}

		ex := NewExtractor(NewNameRegistry(), NewBasicContainerFactory(), zap.NewNop())
		assets, err := ex.ExtractRooms(g, Options{SourceName: "secret", SecretRoom: true})
		require.NoError(t, err)
		assert.ElementsMatch(t, assets[0].CellPositions(), assets[0].SecretCells)
	})
}

func TestProperty_NamesNeverRepeat(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := NewNameRegistry()
		candidates := rapid.SliceOfN(rapid.SampledFrom([]string{"Room_A_x", "Room_B_x", "Room_A_x0"}), 1, 40).Draw(t, "names")
		seen := make(map[string]bool)
		for _, c := range candidates {
			name := reg.Dedup(c)
			assert.False(t, seen[name], "name %q handed out twice", name)
			seen[name] = true
		}
	})
}
