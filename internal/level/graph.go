// Package level models the decoded form of a level-editor file: the tile
// grid, per-room metadata and the objects placed on top of it.
package level

import (
	"errors"
	"fmt"
)

// Tile type codes with special meaning.
const (
	// NonexistentTile marks a placeholder cell that belongs to no room.
	NonexistentTile = 16
	// FlattenedTile is the single type every hallway cell is collapsed to.
	FlattenedTile = 0
)

// ErrReleased is returned when a released Graph is used.
var ErrReleased = errors.New("level graph already released")

// RoomType is the semantic kind of a room.
type RoomType string

// Known room types.
const (
	TypeRoom RoomType = "room"
	TypeHall RoomType = "hall"
)

// TileCell is one grid cell of the decoded level.
type TileCell struct {
	Position IntVector2 `yaml:"pos"`
	RoomID   int        `yaml:"room"`
	Type     int        `yaml:"type"`
}

// PlacedObject is a prefab instance placed in world space.
type PlacedObject struct {
	Prefab   string  `yaml:"prefab"`
	Position Vector3 `yaml:"pos"`
}

// Activity is the optional interactive object of a room (e.g. a notebook).
type Activity struct {
	Prefab    string  `yaml:"prefab"`
	Position  Vector3 `yaml:"pos"`
	Direction string  `yaml:"direction,omitempty"`
}

// Clone returns a deep copy of a, or nil when a is nil.
func (a *Activity) Clone() *Activity {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// WeightedItem is one entry of a room's item pool.
type WeightedItem struct {
	Item   string `yaml:"item"`
	Weight int    `yaml:"weight"`
}

// ItemData is an item pre-placed in the room.
type ItemData struct {
	Item     string  `yaml:"item"`
	Position Vector2 `yaml:"pos"`
}

// MapMaterial describes how a room is drawn on the in-game map.
type MapMaterial struct {
	Name     string            `yaml:"name"`
	Shader   string            `yaml:"shader,omitempty"`
	Textures map[string]string `yaml:"textures,omitempty"`
	Keywords []string          `yaml:"keywords,omitempty"`
}

// DefaultMapMaterial is used when a room carries no map material of its own.
var DefaultMapMaterial = MapMaterial{Name: "MapTile_Standard", Shader: "Shader Graphs/MapTile"}

// Clone returns a deep copy of m.
func (m *MapMaterial) Clone() *MapMaterial {
	if m == nil {
		return nil
	}
	c := &MapMaterial{
		Name:     m.Name,
		Shader:   m.Shader,
		Keywords: append([]string(nil), m.Keywords...),
	}
	if m.Textures != nil {
		c.Textures = make(map[string]string, len(m.Textures))
		for k, v := range m.Textures {
			c.Textures[k] = v
		}
	}
	return c
}

// RoomMetadata is the per-room record of the decoded level.
type RoomMetadata struct {
	Category              string         `yaml:"category"`
	Color                 string         `yaml:"color,omitempty"`
	Type                  RoomType       `yaml:"type"`
	DoorMaterials         string         `yaml:"door_materials,omitempty"`
	Activity              *Activity      `yaml:"activity,omitempty"`
	HasActivity           bool           `yaml:"has_activity,omitempty"`
	ItemList              []WeightedItem `yaml:"item_list,omitempty"`
	Items                 []ItemData     `yaml:"items,omitempty"`
	BlockedWallCells      []IntVector2   `yaml:"blocked_wall_cells,omitempty"`
	ForcedDoorPositions   []IntVector2   `yaml:"forced_door_positions,omitempty"`
	RequiredDoorPositions []IntVector2   `yaml:"required_door_positions,omitempty"`
	SecretCells           []IntVector2   `yaml:"secret_cells,omitempty"`
	CeilingTexture        string         `yaml:"ceiling_texture,omitempty"`
	WallTexture           string         `yaml:"wall_texture,omitempty"`
	FloorTexture          string         `yaml:"floor_texture,omitempty"`
	MapMaterial           *MapMaterial   `yaml:"map_material,omitempty"`
	// BasicObjects holds objects the decoder already attributed to this room.
	BasicObjects []PlacedObject `yaml:"basic_objects,omitempty"`
}

// Graph is a decoded level. It is owned by whoever extracts from it and must
// be released once extraction is over.
type Graph struct {
	LevelSize     IntVector2      `yaml:"level_size"`
	Tiles         []TileCell      `yaml:"tiles"`
	Rooms         []*RoomMetadata `yaml:"rooms"`
	PlacedObjects []PlacedObject  `yaml:"objects,omitempty"`

	released bool
}

// Released reports whether Release has been called.
func (g *Graph) Released() bool {
	return g.released
}

// Release drops every reference held by the graph. Safe to call repeatedly.
//
// Postcondition: Released() is true; the graph holds no tiles, rooms or objects.
func (g *Graph) Release() {
	g.Tiles = nil
	g.Rooms = nil
	g.PlacedObjects = nil
	g.released = true
}

// Room returns the metadata for room id.
//
// Postcondition: Returns a non-nil RoomMetadata or an error when id is out
// of range or the entry is missing.
func (g *Graph) Room(id int) (*RoomMetadata, error) {
	if g.released {
		return nil, ErrReleased
	}
	if id < 0 || id >= len(g.Rooms) {
		return nil, fmt.Errorf("room %d out of range [0,%d)", id, len(g.Rooms))
	}
	if g.Rooms[id] == nil {
		return nil, fmt.Errorf("room %d has no metadata", id)
	}
	return g.Rooms[id], nil
}

// TileOwners maps every existing tile position to the room that owns it.
// Placeholder tiles are skipped.
func (g *Graph) TileOwners() map[IntVector2]int {
	owners := make(map[IntVector2]int, len(g.Tiles))
	for _, t := range g.Tiles {
		if t.Type == NonexistentTile {
			continue
		}
		owners[t.Position] = t.RoomID
	}
	return owners
}
