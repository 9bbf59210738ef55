package room

// Marker prefab names. Room authors place these in the level editor; they are
// part of the file contract and must not change without a format version bump.
const (
	PotentialDoorMarker = "potentialDoorMarker"
	ForcedDoorMarker    = "forcedDoorMarker"
	ItemSpawnMarker     = "itemSpawnMarker"
	NonSafeCellMarker   = "nonSafeCellMarker"
	LightSpotMarker     = "lightSpotMarker"
)

// DefaultItemSpawnWeight is the weight given to every item spawn point built
// from an itemSpawnMarker.
const DefaultItemSpawnWeight = 50

// MarkerDefinition describes how a marker looks in the editor.
type MarkerDefinition struct {
	Name string
	// Color is an RGB hex string.
	Color string
	// Scale is the uniform cube scale.
	Scale float64
	// Offset lifts the cube above the floor.
	Offset float64
	// Glyph is the character used in text previews.
	Glyph rune
}

// MarkerDefinitions lists every marker in registration order.
var MarkerDefinitions = []MarkerDefinition{
	{Name: PotentialDoorMarker, Color: "#0000ff", Scale: 5, Offset: 1, Glyph: 'D'},
	{Name: ForcedDoorMarker, Color: "#0080ff", Scale: 5, Offset: 1, Glyph: 'F'},
	{Name: ItemSpawnMarker, Color: "#ff0000", Scale: 2, Offset: 5, Glyph: 'i'},
	{Name: NonSafeCellMarker, Color: "#00ff00", Scale: 3, Offset: 1, Glyph: 'x'},
	{Name: LightSpotMarker, Color: "#ffff00", Scale: 3, Offset: 10, Glyph: 'L'},
}

// IsMarker reports whether prefab is one of the recognised marker names.
func IsMarker(prefab string) bool {
	switch prefab {
	case PotentialDoorMarker, ForcedDoorMarker, ItemSpawnMarker, NonSafeCellMarker, LightSpotMarker:
		return true
	}
	return false
}

// LookupMarker returns the definition for name.
func LookupMarker(name string) (MarkerDefinition, bool) {
	for _, d := range MarkerDefinitions {
		if d.Name == name {
			return d, true
		}
	}
	return MarkerDefinition{}, false
}
