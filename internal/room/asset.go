// Package room converts decoded level graphs into normalized room assets
// ready for a level-generation room pool.
package room

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/cory-johannsen/roomkit/internal/level"
)

// ItemSpawnPoint is a weighted location where the generator may place an item.
type ItemSpawnPoint struct {
	Weight   int           `yaml:"weight"`
	Position level.Vector2 `yaml:"pos"`
}

// WeightedPoster is one poster candidate for the room's walls.
type WeightedPoster struct {
	Poster string `yaml:"poster"`
	Weight int    `yaml:"weight"`
}

// Material is a surface material with its main texture.
type Material struct {
	Name    string `yaml:"name"`
	Texture string `yaml:"texture"`
}

// Asset is a normalized, self-contained room record. All grid positions are
// room-local: the smallest cell coordinate on each axis is zero.
type Asset struct {
	Name     string         `yaml:"name"`
	Category string         `yaml:"category"`
	Type     level.RoomType `yaml:"type"`

	Cells              []level.TileCell   `yaml:"cells"`
	BlockedWallCells   []level.IntVector2 `yaml:"blocked_wall_cells,omitempty"`
	SecretCells        []level.IntVector2 `yaml:"secret_cells,omitempty"`
	StandardLightCells []level.IntVector2 `yaml:"standard_light_cells,omitempty"`

	PotentialDoorPositions []level.IntVector2 `yaml:"potential_door_positions,omitempty"`
	ForcedDoorPositions    []level.IntVector2 `yaml:"forced_door_positions,omitempty"`
	RequiredDoorPositions  []level.IntVector2 `yaml:"required_door_positions,omitempty"`

	EntitySafeCells []level.IntVector2 `yaml:"entity_safe_cells,omitempty"`
	EventSafeCells  []level.IntVector2 `yaml:"event_safe_cells,omitempty"`

	ItemSpawnPoints []ItemSpawnPoint     `yaml:"item_spawn_points,omitempty"`
	ItemList        []level.WeightedItem `yaml:"item_list,omitempty"`
	Items           []level.ItemData     `yaml:"items,omitempty"`
	Activity        *level.Activity      `yaml:"activity,omitempty"`
	HasActivity     bool                 `yaml:"has_activity,omitempty"`

	BasicObjects []level.PlacedObject `yaml:"basic_objects,omitempty"`

	Color          string             `yaml:"color,omitempty"`
	DoorMaterials  string             `yaml:"door_materials,omitempty"`
	CeilingTexture string             `yaml:"ceiling_texture,omitempty"`
	WallTexture    string             `yaml:"wall_texture,omitempty"`
	FloorTexture   string             `yaml:"floor_texture,omitempty"`
	MapMaterial    *level.MapMaterial `yaml:"map_material,omitempty"`
	KeepTextures   bool               `yaml:"keep_textures"`

	CeilingMaterial *Material `yaml:"ceiling_material,omitempty"`
	WallMaterial    *Material `yaml:"wall_material,omitempty"`
	FloorMaterial   *Material `yaml:"floor_material,omitempty"`

	PosterChance float64          `yaml:"poster_chance,omitempty"`
	Posters      []WeightedPoster `yaml:"posters,omitempty"`
	WindowChance float64          `yaml:"window_chance,omitempty"`
	Window       string           `yaml:"window,omitempty"`
	LightPrefab  string           `yaml:"light_prefab,omitempty"`

	MaxItemValue int  `yaml:"max_item_value"`
	MinItemValue int  `yaml:"min_item_value"`
	OffLimits    bool `yaml:"off_limits"`
	SpawnWeight  int  `yaml:"spawn_weight"`

	// FunctionContainer is the live behaviour handle; only its name is serialized.
	FunctionContainer     FunctionContainer `yaml:"-"`
	FunctionContainerName string            `yaml:"function_container,omitempty"`
}

// IsHallway reports whether the asset is a hallway.
func (a *Asset) IsHallway() bool {
	return a.Type == level.TypeHall
}

// CellPositions returns the position of every cell, in cell order.
func (a *Asset) CellPositions() []level.IntVector2 {
	out := make([]level.IntVector2, len(a.Cells))
	for i, c := range a.Cells {
		out[i] = c.Position
	}
	return out
}

// cellSet returns the set of cell positions.
func (a *Asset) cellSet() mapset.Set[level.IntVector2] {
	set := mapset.New[level.IntVector2]()
	for _, c := range a.Cells {
		set.Put(c.Position)
	}
	return set
}

// SetFunctionContainer attaches c to the asset. A nil c detaches.
func (a *Asset) SetFunctionContainer(c FunctionContainer) {
	a.FunctionContainer = c
	a.FunctionContainerName = ""
	if c != nil {
		a.FunctionContainerName = c.Name()
	}
}

// SetPotentialPosters sets the poster pool.
//
// Postcondition: returns a for chaining.
func (a *Asset) SetPotentialPosters(chance float64, posters ...WeightedPoster) *Asset {
	a.PosterChance = chance
	a.Posters = append([]WeightedPoster(nil), posters...)
	return a
}

// SetPotentialWindows sets the window object and its chance.
//
// Postcondition: returns a for chaining.
func (a *Asset) SetPotentialWindows(chance float64, window string) *Asset {
	a.WindowChance = chance
	a.Window = window
	return a
}

// SetMaterials overrides the room surfaces. Nil arguments leave the
// corresponding surface untouched. Textures are kept by the generator only
// when all three surfaces carry a material.
//
// Postcondition: returns a for chaining.
func (a *Asset) SetMaterials(ceiling, wall, floor *Material) *Asset {
	if ceiling != nil {
		m := *ceiling
		a.CeilingMaterial = &m
		a.CeilingTexture = m.Texture
	}
	if wall != nil {
		m := *wall
		a.WallMaterial = &m
		a.WallTexture = m.Texture
	}
	if floor != nil {
		m := *floor
		a.FloorMaterial = &m
		a.FloorTexture = m.Texture
	}
	a.KeepTextures = a.CeilingMaterial != nil && a.WallMaterial != nil && a.FloorMaterial != nil
	return a
}

// Validate checks asset invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (a *Asset) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("asset name must not be empty")
	}
	if len(a.Cells) > 0 {
		minX, minZ := a.Cells[0].Position.X, a.Cells[0].Position.Z
		for _, c := range a.Cells {
			minX = min(minX, c.Position.X)
			minZ = min(minZ, c.Position.Z)
		}
		if minX != 0 || minZ != 0 {
			return fmt.Errorf("asset %q: cells must start at (0,0), smallest is (%d,%d)", a.Name, minX, minZ)
		}
	}

	if a.IsHallway() {
		if len(a.EntitySafeCells) > 0 || len(a.EventSafeCells) > 0 {
			return fmt.Errorf("asset %q: hallways must not carry safe cells", a.Name)
		}
	} else {
		cells := a.cellSet()
		for _, p := range a.EntitySafeCells {
			if !cells.Has(p) {
				return fmt.Errorf("asset %q: entity safe cell %s is not a room cell", a.Name, p)
			}
		}
		for _, p := range a.EventSafeCells {
			if !cells.Has(p) {
				return fmt.Errorf("asset %q: event safe cell %s is not a room cell", a.Name, p)
			}
		}
	}

	for _, obj := range a.BasicObjects {
		if IsMarker(obj.Prefab) {
			return fmt.Errorf("asset %q: marker %q left in basic objects", a.Name, obj.Prefab)
		}
	}
	return nil
}

// removePosition returns s without any occurrence of p. The backing array is reused.
func removePosition(s []level.IntVector2, p level.IntVector2) []level.IntVector2 {
	out := s[:0]
	for _, v := range s {
		if v != p {
			out = append(out, v)
		}
	}
	return out
}

// offsetPositions returns a copy of s with off subtracted from every entry.
func offsetPositions(s []level.IntVector2, off level.IntVector2) []level.IntVector2 {
	if s == nil {
		return nil
	}
	out := make([]level.IntVector2, len(s))
	for i, p := range s {
		out[i] = p.Sub(off)
	}
	return out
}
