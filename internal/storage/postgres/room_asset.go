package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/roomkit/internal/room"
)

// ErrRoomNotFound is returned when a catalog lookup yields no results.
var ErrRoomNotFound = errors.New("room not found")

// RoomRecord is one catalog row: the selection metadata of an emitted room
// asset plus its full YAML document.
type RoomRecord struct {
	Name              string
	Category          string
	Type              string
	SpawnWeight       int
	OffLimits         bool
	CellCount         int
	FunctionContainer string
	Document          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Asset parses the stored document back into a validated asset.
func (r RoomRecord) Asset() (*room.Asset, error) {
	a, err := room.LoadAssetFromBytes([]byte(r.Document))
	if err != nil {
		return nil, fmt.Errorf("catalog room %q: %w", r.Name, err)
	}
	return a, nil
}

// NewRoomRecord builds the catalog row for a and its encoding.
//
// Precondition: a must be non-nil; encoded must be a's YAML encoding.
func NewRoomRecord(a *room.Asset, encoded []byte) RoomRecord {
	return RoomRecord{
		Name:              a.Name,
		Category:          a.Category,
		Type:              string(a.Type),
		SpawnWeight:       a.SpawnWeight,
		OffLimits:         a.OffLimits,
		CellCount:         len(a.Cells),
		FunctionContainer: a.FunctionContainerName,
		Document:          string(encoded),
	}
}

// RoomAssetRepository persists emitted room assets in the room_assets table.
//
// RoomAssetRepository is safe for concurrent use and doubles as an importer sink.
type RoomAssetRepository struct {
	db *pgxpool.Pool
}

// NewRoomAssetRepository creates a RoomAssetRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRoomAssetRepository(db *pgxpool.Pool) *RoomAssetRepository {
	return &RoomAssetRepository{db: db}
}

// Write stores a, replacing any earlier row with the same name.
//
// Precondition: encoded must be a's YAML encoding.
// Postcondition: the catalog holds exactly one row named a.Name.
func (r *RoomAssetRepository) Write(ctx context.Context, a *room.Asset, encoded []byte) error {
	_, err := r.Upsert(ctx, NewRoomRecord(a, encoded))
	return err
}

// Upsert inserts rec or updates the existing row with the same name.
//
// Precondition: rec.Name and rec.Document must be non-empty.
// Postcondition: Returns the stored row with timestamps set.
func (r *RoomAssetRepository) Upsert(ctx context.Context, rec RoomRecord) (RoomRecord, error) {
	if rec.Name == "" || rec.Document == "" {
		return RoomRecord{}, errors.New("catalog room requires a name and a document")
	}
	var out RoomRecord
	err := r.db.QueryRow(ctx,
		`INSERT INTO room_assets
		   (name, category, room_type, spawn_weight, off_limits, cell_count, function_container, document)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (name) DO UPDATE SET
		   category = EXCLUDED.category,
		   room_type = EXCLUDED.room_type,
		   spawn_weight = EXCLUDED.spawn_weight,
		   off_limits = EXCLUDED.off_limits,
		   cell_count = EXCLUDED.cell_count,
		   function_container = EXCLUDED.function_container,
		   document = EXCLUDED.document,
		   updated_at = NOW()
		 RETURNING name, category, room_type, spawn_weight, off_limits, cell_count,
		           function_container, document, created_at, updated_at`,
		rec.Name, rec.Category, rec.Type, rec.SpawnWeight, rec.OffLimits, rec.CellCount,
		rec.FunctionContainer, rec.Document,
	).Scan(scanTargets(&out)...)
	if err != nil {
		return RoomRecord{}, fmt.Errorf("upserting room %q: %w", rec.Name, err)
	}
	return out, nil
}

// GetByName retrieves a catalog row by room name.
//
// Postcondition: Returns the row, or ErrRoomNotFound.
func (r *RoomAssetRepository) GetByName(ctx context.Context, name string) (RoomRecord, error) {
	var out RoomRecord
	err := r.db.QueryRow(ctx,
		`SELECT name, category, room_type, spawn_weight, off_limits, cell_count,
		        function_container, document, created_at, updated_at
		 FROM room_assets WHERE name = $1`,
		name,
	).Scan(scanTargets(&out)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RoomRecord{}, ErrRoomNotFound
		}
		return RoomRecord{}, fmt.Errorf("querying room %q: %w", name, err)
	}
	return out, nil
}

// ListByCategory returns every selectable room of category, ordered by name.
// Off-limits rooms are left out unless includeOffLimits is set.
func (r *RoomAssetRepository) ListByCategory(ctx context.Context, category string, includeOffLimits bool) ([]RoomRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, category, room_type, spawn_weight, off_limits, cell_count,
		        function_container, document, created_at, updated_at
		 FROM room_assets
		 WHERE category = $1 AND ($2::boolean OR NOT off_limits)
		 ORDER BY name`,
		category, includeOffLimits,
	)
	if err != nil {
		return nil, fmt.Errorf("listing rooms in %q: %w", category, err)
	}
	defer rows.Close()

	var out []RoomRecord
	for rows.Next() {
		var rec RoomRecord
		if err := rows.Scan(scanTargets(&rec)...); err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}
	return out, nil
}

// TotalSpawnWeight sums the spawn weight of the selectable rooms of category.
func (r *RoomAssetRepository) TotalSpawnWeight(ctx context.Context, category string) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(spawn_weight), 0)::int FROM room_assets
		 WHERE category = $1 AND NOT off_limits`,
		category,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing spawn weight for %q: %w", category, err)
	}
	return total, nil
}

// Delete removes the row named name.
//
// Postcondition: Returns ErrRoomNotFound when no row matched.
func (r *RoomAssetRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM room_assets WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting room %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func scanTargets(rec *RoomRecord) []any {
	return []any{
		&rec.Name, &rec.Category, &rec.Type, &rec.SpawnWeight, &rec.OffLimits, &rec.CellCount,
		&rec.FunctionContainer, &rec.Document, &rec.CreatedAt, &rec.UpdatedAt,
	}
}
