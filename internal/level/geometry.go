package level

import (
	"fmt"
	"math"
)

// GridCellSize is the world-unit length of one tile edge.
const GridCellSize = 10.0

// IntVector2 is a position on the tile grid. Z is the second horizontal axis.
type IntVector2 struct {
	X int `yaml:"x"`
	Z int `yaml:"z"`
}

// Add returns v + o.
func (v IntVector2) Add(o IntVector2) IntVector2 {
	return IntVector2{X: v.X + o.X, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v IntVector2) Sub(o IntVector2) IntVector2 {
	return IntVector2{X: v.X - o.X, Z: v.Z - o.Z}
}

// World converts a grid offset into a world-space offset on the horizontal plane.
func (v IntVector2) World(cellSize float64) Vector3 {
	return Vector3{X: float64(v.X) * cellSize, Z: float64(v.Z) * cellSize}
}

// String implements fmt.Stringer.
func (v IntVector2) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Z)
}

// Neighbors4 holds the four axis-aligned neighbour offsets.
var Neighbors4 = [4]IntVector2{
	{X: 1, Z: 0},
	{X: -1, Z: 0},
	{X: 0, Z: 1},
	{X: 0, Z: -1},
}

// Vector2 is a horizontal world-space position.
type Vector2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Sub returns v - o.
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Vector3 is a world-space position. Y is vertical.
type Vector3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Horizontal projects v onto the horizontal plane.
func (v Vector3) Horizontal() Vector2 {
	return Vector2{X: v.X, Y: v.Z}
}

// GridPosition returns the grid cell containing the world position p.
//
// Precondition: cellSize > 0.
// Postcondition: floor(p.X/cellSize), floor(p.Z/cellSize).
func GridPosition(p Vector3, cellSize float64) IntVector2 {
	return IntVector2{
		X: int(math.Floor(p.X / cellSize)),
		Z: int(math.Floor(p.Z / cellSize)),
	}
}

// Bounds is an inclusive axis-aligned rectangle on the grid.
type Bounds struct {
	Min IntVector2
	Max IntVector2
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p IntVector2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Size returns Max - Min.
func (b Bounds) Size() IntVector2 {
	return b.Max.Sub(b.Min)
}
