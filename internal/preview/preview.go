// Package preview renders room assets as character grids for quick review
// of an import. Row 0 is the room's largest Z, so +Z points up.
package preview

import (
	"strings"

	"github.com/cory-johannsen/roomkit/internal/level"
	"github.com/cory-johannsen/roomkit/internal/room"
)

// Glyphs for cell states that have no marker of their own.
const (
	EmptyGlyph  = ' '
	FloorGlyph  = '.'
	HallGlyph   = '-'
	SecretGlyph = 's'
)

// Colors for the non-marker glyphs, as RGB hex strings.
const (
	FloorColor  = "#c0c0c0"
	HallColor   = "#808080"
	SecretColor = "#ff00ff"
)

// Cell is one rendered grid position.
type Cell struct {
	Glyph rune
	// Color is an RGB hex string; empty for EmptyGlyph.
	Color string
}

// LegendEntry explains one glyph.
type LegendEntry struct {
	Cell
	Label string
}

// Legend lists every glyph Grid can produce, markers first.
func Legend() []LegendEntry {
	var out []LegendEntry
	for _, d := range room.MarkerDefinitions {
		out = append(out, LegendEntry{Cell: Cell{Glyph: d.Glyph, Color: d.Color}, Label: d.Name})
	}
	return append(out,
		LegendEntry{Cell: Cell{Glyph: SecretGlyph, Color: SecretColor}, Label: "secret cell"},
		LegendEntry{Cell: Cell{Glyph: FloorGlyph, Color: FloorColor}, Label: "room cell"},
		LegendEntry{Cell: Cell{Glyph: HallGlyph, Color: HallColor}, Label: "hallway cell"},
	)
}

// Grid lays a out on its bounding rectangle. When several features share a
// cell the strongest wins: forced door, potential door, item spawn, light,
// non-safe cell, secret cell, plain cell.
//
// Precondition: cellSize > 0.
// Postcondition: every row has the same length; an asset without cells
// yields nil.
func Grid(a *room.Asset, cellSize float64) [][]Cell {
	if len(a.Cells) == 0 {
		return nil
	}
	maxX, maxZ := 0, 0
	for _, c := range a.Cells {
		maxX = max(maxX, c.Position.X)
		maxZ = max(maxZ, c.Position.Z)
	}

	base := Cell{Glyph: FloorGlyph, Color: FloorColor}
	if a.IsHallway() {
		base = Cell{Glyph: HallGlyph, Color: HallColor}
	}

	grid := make([][]Cell, maxZ+1)
	for i := range grid {
		grid[i] = make([]Cell, maxX+1)
		for j := range grid[i] {
			grid[i][j] = Cell{Glyph: EmptyGlyph}
		}
	}
	rank := make(map[level.IntVector2]int)
	put := func(p level.IntVector2, c Cell, r int) {
		if p.X < 0 || p.Z < 0 || p.X > maxX || p.Z > maxZ {
			return
		}
		if r <= rank[p] {
			return
		}
		rank[p] = r
		grid[maxZ-p.Z][p.X] = c
	}
	marker := func(name string) Cell {
		d, _ := room.LookupMarker(name)
		return Cell{Glyph: d.Glyph, Color: d.Color}
	}

	for _, c := range a.Cells {
		put(c.Position, base, 1)
	}
	for _, p := range a.SecretCells {
		put(p, Cell{Glyph: SecretGlyph, Color: SecretColor}, 2)
	}
	if !a.IsHallway() {
		safe := make(map[level.IntVector2]bool, len(a.EntitySafeCells))
		for _, p := range a.EntitySafeCells {
			safe[p] = true
		}
		for _, c := range a.Cells {
			if !safe[c.Position] && !contains(a.SecretCells, c.Position) {
				put(c.Position, marker(room.NonSafeCellMarker), 3)
			}
		}
	}
	for _, p := range a.StandardLightCells {
		put(p, marker(room.LightSpotMarker), 4)
	}
	for _, sp := range a.ItemSpawnPoints {
		pos := level.GridPosition(level.Vector3{X: sp.Position.X, Z: sp.Position.Y}, cellSize)
		put(pos, marker(room.ItemSpawnMarker), 5)
	}
	for _, p := range a.PotentialDoorPositions {
		put(p, marker(room.PotentialDoorMarker), 6)
	}
	for _, p := range a.ForcedDoorPositions {
		put(p, marker(room.ForcedDoorMarker), 7)
	}
	return grid
}

// Render returns the grid as plain text lines.
func Render(a *room.Asset, cellSize float64) []string {
	grid := Grid(a, cellSize)
	lines := make([]string, len(grid))
	for i, row := range grid {
		var b strings.Builder
		for _, c := range row {
			b.WriteRune(c.Glyph)
		}
		lines[i] = b.String()
	}
	return lines
}

func contains(s []level.IntVector2, p level.IntVector2) bool {
	for _, v := range s {
		if v == p {
			return true
		}
	}
	return false
}
