package room

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roomkit/internal/level"
)

// Map material texture slot and keyword used for room backgrounds.
const (
	MapBackgroundTexture = "_MapBackground"
	MapBackgroundKeyword = "_KEYMAPSHOWBACKGROUND_ON"
)

// Range is a half-open interval of room ids. The zero Range selects every
// room of the level.
type Range struct {
	Start int
	End   int
}

// Len returns the number of ids in r.
func (r Range) Len() int { return r.End - r.Start }

// Options controls one extraction batch.
type Options struct {
	// Rooms selects the room ids to extract.
	Rooms Range
	// SourceName is the base file name used in generated room names.
	SourceName string

	MaxItemValue int
	MinItemValue int
	OffLimits    bool
	SpawnWeight  int

	// Container, when set, is shared by every room of the batch.
	Container FunctionContainer
	// Behaviors are attached to every container the extractor creates.
	Behaviors []string

	// SecretRoom marks every cell secret.
	SecretRoom bool
	// MapBackground is the texture drawn behind the room on the map; empty
	// keeps the room's own material.
	MapBackground string
	KeepTextures  bool
	// SquareShape pads non-hallway rooms to their full bounding rectangle.
	SquareShape bool
	// AllCellsAreLightCells adds every original cell to StandardLightCells.
	AllCellsAreLightCells bool
	LightPrefab           string
}

// Extractor turns decoded level graphs into room assets.
type Extractor struct {
	// CellSize is the world-unit length of a tile edge.
	CellSize float64
	// Extension is the required extension of files opened by LoadFile.
	Extension string

	names      *NameRegistry
	containers ContainerFactory
	shape      ShapeNormalizer
	logger     *zap.Logger
}

// NewExtractor creates an Extractor.
//
// Precondition: names, containers and logger must be non-nil.
// Postcondition: Returns an Extractor using level.GridCellSize and level.Extension.
func NewExtractor(names *NameRegistry, containers ContainerFactory, logger *zap.Logger) *Extractor {
	return &Extractor{
		CellSize:   level.GridCellSize,
		Extension:  level.Extension,
		names:      names,
		containers: containers,
		logger:     logger,
	}
}

// LoadFile opens path, decodes it with dec and extracts the rooms selected
// by opts. opts.SourceName defaults to the file's base name.
//
// Postcondition: Returns the extracted assets in room id order, or an error
// wrapping level.ErrInvalidArgument or level.ErrDecode. Per-room faults are
// logged and never returned.
func (e *Extractor) LoadFile(path string, dec level.Decoder, opts Options) ([]*Asset, error) {
	g, err := level.Open(path, e.Extension, dec)
	if err != nil {
		return nil, err
	}
	if opts.SourceName == "" {
		opts.SourceName = level.BaseName(path)
	}
	return e.ExtractRooms(g, opts)
}

// LoadRoom extracts the single room roomID from path.
//
// Postcondition: Returns the asset, or an error; a faulty room yields its
// *PerRoomExtractionError.
func (e *Extractor) LoadRoom(path string, dec level.Decoder, roomID int, opts Options) (*Asset, error) {
	g, err := level.Open(path, e.Extension, dec)
	if err != nil {
		return nil, err
	}
	if opts.SourceName == "" {
		opts.SourceName = level.BaseName(path)
	}
	opts.Rooms = Range{Start: roomID, End: roomID + 1}
	assets, roomErrs, err := e.extract(g, opts)
	if err != nil {
		return nil, err
	}
	if len(roomErrs) > 0 {
		return nil, roomErrs[0]
	}
	return assets[0], nil
}

// ExtractRooms builds one asset per room id in opts.Rooms. It takes
// ownership of g and releases it before returning, on every path.
//
// Precondition: opts.Rooms must lie within [0, len(g.Rooms)].
// Postcondition: Returns the successfully extracted assets in room id order.
// A room that fails is logged and skipped; only argument-level faults are
// returned as errors.
func (e *Extractor) ExtractRooms(g *level.Graph, opts Options) ([]*Asset, error) {
	assets, roomErrs, err := e.extract(g, opts)
	for _, rerr := range roomErrs {
		e.logger.Warn("skipping room",
			zap.String("source", opts.SourceName),
			zap.Int("room", rerr.RoomID),
			zap.Error(rerr.Err),
		)
	}
	return assets, err
}

// batch carries state shared by the rooms of one extraction call.
type batch struct {
	opts      Options
	owners    map[level.IntVector2]int
	container FunctionContainer
}

func (e *Extractor) extract(g *level.Graph, opts Options) ([]*Asset, []*PerRoomExtractionError, error) {
	defer g.Release()
	if g.Released() {
		return nil, nil, level.ErrReleased
	}

	rng := opts.Rooms
	if rng == (Range{}) {
		rng = Range{Start: 0, End: len(g.Rooms)}
	}
	if rng.Start < 0 || rng.End > len(g.Rooms) || rng.Start >= rng.End {
		return nil, nil, fmt.Errorf("%w: room range [%d,%d) outside [0,%d)",
			level.ErrInvalidArgument, rng.Start, rng.End, len(g.Rooms))
	}
	opts.Rooms = rng

	b := &batch{opts: opts, owners: g.TileOwners(), container: opts.Container}
	var (
		assets   []*Asset
		roomErrs []*PerRoomExtractionError
	)
	for idx := rng.Start; idx < rng.End; idx++ {
		a, err := e.extractRoomSafe(g, b, idx)
		if err != nil {
			roomErrs = append(roomErrs, &PerRoomExtractionError{RoomID: idx, Err: err})
			continue
		}
		e.logger.Debug("room extracted",
			zap.String("source", opts.SourceName),
			zap.Int("room", idx),
			zap.String("name", a.Name),
			zap.Int("cells", len(a.Cells)),
			zap.Int("basic_objects", len(a.BasicObjects)),
		)
		assets = append(assets, a)
	}
	return assets, roomErrs, nil
}

// extractRoomSafe converts a panic inside extractRoom into an error so one
// broken room cannot take its siblings down.
func (e *Extractor) extractRoomSafe(g *level.Graph, b *batch, idx int) (a *Asset, err error) {
	defer func() {
		if r := recover(); r != nil {
			a = nil
			err = fmt.Errorf("%w: %v", ErrMalformedRoom, r)
		}
	}()
	return e.extractRoom(g, b, idx)
}

func (e *Extractor) extractRoom(g *level.Graph, b *batch, idx int) (*Asset, error) {
	meta, err := g.Room(idx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRoom, err)
	}
	opts := b.opts

	tiles := roomTiles(g.Tiles, idx)
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: room %d has no tiles", ErrMalformedRoom, idx)
	}
	bounds := tileBounds(tiles)
	posOffset := bounds.Min
	worldOffset := posOffset.World(e.CellSize)
	biggest := bounds.Size()

	a := &Asset{
		Category:     meta.Category,
		Type:         meta.Type,
		MaxItemValue: opts.MaxItemValue,
		MinItemValue: opts.MinItemValue,
		OffLimits:    opts.OffLimits,
		SpawnWeight:  opts.SpawnWeight,
		KeepTextures: opts.KeepTextures,
		LightPrefab:  opts.LightPrefab,
	}
	hall := a.IsHallway()

	a.Cells = make([]level.TileCell, len(tiles))
	for i, t := range tiles {
		t.Position = t.Position.Sub(posOffset)
		a.Cells[i] = t
	}
	if hall {
		e.shape.Flatten(a.Cells)
	}

	copyMetadata(a, meta, posOffset, worldOffset)

	positions := a.CellPositions()
	if !hall {
		a.EntitySafeCells = append([]level.IntVector2(nil), positions...)
		a.EventSafeCells = append([]level.IntVector2(nil), positions...)
	}

	objects := roomObjects(g.PlacedObjects, meta.BasicObjects, b.owners, idx, bounds, e.CellSize)
	for i := range objects {
		objects[i].Position = objects[i].Position.Sub(worldOffset)
	}
	e.classify(a, objects)

	if opts.AllCellsAreLightCells {
		a.StandardLightCells = append(a.StandardLightCells, positions...)
	}

	if opts.SecretRoom {
		a.SecretCells = append([]level.IntVector2(nil), positions...)
	} else {
		a.SecretCells = offsetPositions(meta.SecretCells, posOffset)
	}

	suffix := ""
	if opts.Rooms.Len() != 1 {
		suffix = strconv.Itoa(idx)
	}
	a.Name = e.names.Dedup(fmt.Sprintf("Room_%s_%s%s", a.Category, opts.SourceName, suffix))

	if err := e.assignContainer(a, b); err != nil {
		return nil, err
	}

	if opts.MapBackground != "" {
		mat := a.MapMaterial
		if mat == nil {
			mat = level.DefaultMapMaterial.Clone()
		}
		if mat.Textures == nil {
			mat.Textures = make(map[string]string)
		}
		mat.Textures[MapBackgroundTexture] = opts.MapBackground
		mat.Keywords = []string{MapBackgroundKeyword}
		mat.Name = a.Name
		a.MapMaterial = mat
	} else if hall {
		a.MapMaterial = nil
	}

	if hall {
		e.shape.InferBorderDoors(a)
	}
	if opts.SquareShape {
		e.shape.PadSquare(a, biggest)
	}
	return a, nil
}

// assignContainer gives a its function container. An explicit container is
// shared by the whole batch; otherwise the first container created in the
// batch is reused by later rooms. Hallways get none.
func (e *Extractor) assignContainer(a *Asset, b *batch) error {
	if b.opts.Container != nil {
		a.SetFunctionContainer(b.opts.Container)
		return nil
	}
	if a.IsHallway() {
		return nil
	}
	if b.container != nil {
		a.SetFunctionContainer(b.container)
		return nil
	}
	c, err := e.containers.NewContainer(a.Name + ContainerSuffix)
	if err != nil {
		return fmt.Errorf("creating function container: %w", err)
	}
	for _, behavior := range b.opts.Behaviors {
		if err := c.AttachBehavior(behavior); err != nil {
			return errors.Join(fmt.Errorf("attaching behavior %q: %w", behavior, err), c.Release())
		}
	}
	b.container = c
	a.SetFunctionContainer(c)
	return nil
}

// classify routes every room object either to the field its marker name
// selects or to BasicObjects. Door markers are resolved last, against the
// objects that remain, since a door frees a blocked wall only when nothing
// else occupies its cell.
func (e *Extractor) classify(a *Asset, objects []level.PlacedObject) {
	hall := a.IsHallway()
	var doors []level.PlacedObject
	for _, obj := range objects {
		pos := level.GridPosition(obj.Position, e.CellSize)
		switch obj.Prefab {
		case LightSpotMarker:
			a.StandardLightCells = append(a.StandardLightCells, pos)
		case ItemSpawnMarker:
			a.ItemSpawnPoints = append(a.ItemSpawnPoints, ItemSpawnPoint{
				Weight:   DefaultItemSpawnWeight,
				Position: obj.Position.Horizontal(),
			})
		case NonSafeCellMarker:
			if !hall {
				a.EntitySafeCells = removePosition(a.EntitySafeCells, pos)
				a.EventSafeCells = removePosition(a.EventSafeCells, pos)
			}
		case PotentialDoorMarker, ForcedDoorMarker:
			doors = append(doors, obj)
		default:
			a.BasicObjects = append(a.BasicObjects, obj)
		}
	}
	if hall || len(doors) == 0 {
		return
	}

	occupied := mapset.New[level.IntVector2]()
	for _, obj := range a.BasicObjects {
		occupied.Put(level.GridPosition(obj.Position, e.CellSize))
	}
	for _, d := range doors {
		pos := level.GridPosition(d.Position, e.CellSize)
		if d.Prefab == PotentialDoorMarker {
			a.PotentialDoorPositions = append(a.PotentialDoorPositions, pos)
		} else {
			a.ForcedDoorPositions = append(a.ForcedDoorPositions, pos)
		}
		if !occupied.Has(pos) {
			a.BlockedWallCells = removePosition(a.BlockedWallCells, pos)
		}
	}
}

// copyMetadata copies the room record by value, re-basing every position.
func copyMetadata(a *Asset, meta *level.RoomMetadata, posOffset level.IntVector2, worldOffset level.Vector3) {
	a.Color = meta.Color
	a.DoorMaterials = meta.DoorMaterials
	a.HasActivity = meta.HasActivity
	if act := meta.Activity.Clone(); act != nil {
		act.Position = act.Position.Sub(worldOffset)
		a.Activity = act
	}
	a.ItemList = append([]level.WeightedItem(nil), meta.ItemList...)
	if meta.Items != nil {
		shift := worldOffset.Horizontal()
		a.Items = make([]level.ItemData, len(meta.Items))
		for i, it := range meta.Items {
			it.Position = it.Position.Sub(shift)
			a.Items[i] = it
		}
	}
	a.BlockedWallCells = offsetPositions(meta.BlockedWallCells, posOffset)
	a.ForcedDoorPositions = offsetPositions(meta.ForcedDoorPositions, posOffset)
	a.RequiredDoorPositions = offsetPositions(meta.RequiredDoorPositions, posOffset)
	a.CeilingTexture = meta.CeilingTexture
	a.WallTexture = meta.WallTexture
	a.FloorTexture = meta.FloorTexture
	a.MapMaterial = meta.MapMaterial.Clone()
}

// roomTiles returns the existing tiles owned by room idx, in source order.
func roomTiles(tiles []level.TileCell, idx int) []level.TileCell {
	var out []level.TileCell
	for _, t := range tiles {
		if t.RoomID == idx && t.Type != level.NonexistentTile {
			out = append(out, t)
		}
	}
	return out
}

// tileBounds returns the bounding box of tiles.
//
// Precondition: len(tiles) > 0.
func tileBounds(tiles []level.TileCell) level.Bounds {
	b := level.Bounds{Min: tiles[0].Position, Max: tiles[0].Position}
	for _, t := range tiles[1:] {
		b.Min.X = min(b.Min.X, t.Position.X)
		b.Min.Z = min(b.Min.Z, t.Position.Z)
		b.Max.X = max(b.Max.X, t.Position.X)
		b.Max.Z = max(b.Max.Z, t.Position.Z)
	}
	return b
}

// roomObjects collects the objects that belong to room idx, in world space.
// Objects pre-attributed to the room come first. A placed object belongs to
// the room whose tile lies under it; an object over no tile belongs to the
// room whose bounding box contains it.
func roomObjects(placed, attributed []level.PlacedObject, owners map[level.IntVector2]int, idx int, bounds level.Bounds, cellSize float64) []level.PlacedObject {
	out := append([]level.PlacedObject(nil), attributed...)
	for _, obj := range placed {
		cell := level.GridPosition(obj.Position, cellSize)
		owner, onTile := owners[cell]
		if (onTile && owner == idx) || (!onTile && bounds.Contains(cell)) {
			out = append(out, obj)
		}
	}
	return out
}
