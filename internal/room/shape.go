package room

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/cory-johannsen/roomkit/internal/level"
)

// ShapeNormalizer applies the optional shape policies to a room: hallway
// flattening, border-door inference and square padding. Each policy is
// independent and works on a half-built Asset.
type ShapeNormalizer struct{}

// Flatten collapses every cell to level.FlattenedTile.
func (ShapeNormalizer) Flatten(cells []level.TileCell) {
	for i := range cells {
		cells[i].Type = level.FlattenedTile
	}
}

// InferBorderDoors marks every cell lacking at least one of its four
// neighbours as a potential door. It does nothing when the asset already
// has potential doors.
//
// Postcondition: returns the number of door positions added.
func (ShapeNormalizer) InferBorderDoors(a *Asset) int {
	if len(a.PotentialDoorPositions) > 0 {
		return 0
	}
	cells := a.cellSet()
	added := mapset.New[level.IntVector2]()
	for _, c := range a.Cells {
		if added.Has(c.Position) || !touchesBorder(cells, c.Position) {
			continue
		}
		added.Put(c.Position)
		a.PotentialDoorPositions = append(a.PotentialDoorPositions, c.Position)
	}
	return added.Size()
}

func touchesBorder(cells mapset.Set[level.IntVector2], p level.IntVector2) bool {
	for _, off := range level.Neighbors4 {
		if !cells.Has(p.Add(off)) {
			return true
		}
	}
	return false
}

// PadSquare fills every missing position of [0,size.X]×[0,size.Z] with a
// bare cell that is also marked secret. Hallways and degenerate boxes
// (a zero extent on either axis) are left alone. Padding an already
// rectangular room adds nothing.
//
// Postcondition: returns the number of cells added.
func (ShapeNormalizer) PadSquare(a *Asset, size level.IntVector2) int {
	if a.IsHallway() || size.X <= 0 || size.Z <= 0 || len(a.Cells) == 0 {
		return 0
	}
	roomID := a.Cells[0].RoomID
	cells := a.cellSet()
	added := 0
	for x := 0; x <= size.X; x++ {
		for z := 0; z <= size.Z; z++ {
			p := level.IntVector2{X: x, Z: z}
			if cells.Has(p) {
				continue
			}
			cells.Put(p)
			a.Cells = append(a.Cells, level.TileCell{Position: p, RoomID: roomID})
			a.SecretCells = append(a.SecretCells, p)
			added++
		}
	}
	return added
}
