package room_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/roomkit/internal/room"
)

func TestIsMarker(t *testing.T) {
	for _, d := range room.MarkerDefinitions {
		assert.True(t, room.IsMarker(d.Name), d.Name)
	}
	assert.False(t, room.IsMarker("desk"))
	assert.False(t, room.IsMarker("PotentialDoorMarker"), "marker names are case sensitive")
}

func TestLookupMarker(t *testing.T) {
	d, ok := room.LookupMarker(room.ItemSpawnMarker)
	assert.True(t, ok)
	assert.Equal(t, "#ff0000", d.Color)
	assert.Equal(t, 'i', d.Glyph)

	_, ok = room.LookupMarker("desk")
	assert.False(t, ok)
}

func TestMarkerDefinitions_UniqueGlyphs(t *testing.T) {
	glyphs := make(map[rune]string)
	for _, d := range room.MarkerDefinitions {
		prev, dup := glyphs[d.Glyph]
		assert.False(t, dup, "%s and %s share glyph %q", prev, d.Name, d.Glyph)
		glyphs[d.Glyph] = d.Name
	}
	assert.Len(t, room.MarkerDefinitions, 5)
}
