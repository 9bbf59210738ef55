package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph() *Graph {
	return &Graph{
		Tiles: []TileCell{
			{Position: IntVector2{0, 0}, RoomID: 0, Type: 1},
			{Position: IntVector2{1, 0}, RoomID: 1, Type: 1},
			{Position: IntVector2{2, 0}, RoomID: 1, Type: NonexistentTile},
		},
		Rooms:         []*RoomMetadata{{Category: "Hall", Type: TypeHall}, {Category: "Class"}, nil},
		PlacedObjects: []PlacedObject{{Prefab: "chair"}},
	}
}

func TestGraph_Room(t *testing.T) {
	g := testGraph()

	r, err := g.Room(1)
	require.NoError(t, err)
	assert.Equal(t, "Class", r.Category)

	_, err = g.Room(2)
	assert.Error(t, err)
	_, err = g.Room(3)
	assert.Error(t, err)
	_, err = g.Room(-1)
	assert.Error(t, err)
}

func TestGraph_Release(t *testing.T) {
	g := testGraph()
	g.Release()
	assert.True(t, g.Released())
	assert.Nil(t, g.Tiles)
	assert.Nil(t, g.Rooms)
	assert.Nil(t, g.PlacedObjects)

	_, err := g.Room(0)
	assert.ErrorIs(t, err, ErrReleased)

	g.Release()
	assert.True(t, g.Released())
}

func TestGraph_TileOwners(t *testing.T) {
	owners := testGraph().TileOwners()
	assert.Len(t, owners, 2)
	assert.Equal(t, 0, owners[IntVector2{0, 0}])
	assert.Equal(t, 1, owners[IntVector2{1, 0}])
	_, ok := owners[IntVector2{2, 0}]
	assert.False(t, ok, "placeholder tiles must not own a position")
}

func TestMapMaterial_Clone(t *testing.T) {
	m := &MapMaterial{Name: "a", Textures: map[string]string{"_Main": "tex"}, Keywords: []string{"K"}}
	c := m.Clone()
	c.Textures["_Main"] = "other"
	c.Keywords[0] = "X"
	assert.Equal(t, "tex", m.Textures["_Main"])
	assert.Equal(t, "K", m.Keywords[0])

	var nilMat *MapMaterial
	assert.Nil(t, nilMat.Clone())
}

func TestActivity_Clone(t *testing.T) {
	a := &Activity{Prefab: "notebook", Position: Vector3{X: 1}}
	c := a.Clone()
	c.Position.X = 9
	assert.Equal(t, 1.0, a.Position.X)

	var nilAct *Activity
	assert.Nil(t, nilAct.Clone())
}
