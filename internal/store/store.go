package store

import (
	"context"

	"github.com/wernerjr/gpstracker/internal/db"
)

// Store owns the location_records table. Appends come from the tracking
// controller, flag flips and deletes from the sync engine or explicit user
// requests; no other writer exists.
type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS location_records (
			id BIGSERIAL PRIMARY KEY,
			guid UUID NOT NULL UNIQUE,
			session_id UUID,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			accuracy_m DOUBLE PRECISION NOT NULL,
			speed_kmh DOUBLE PRECISION NOT NULL DEFAULT 0,
			recorded_at TIMESTAMPTZ NOT NULL,
			synced SMALLINT NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_location_records_synced ON location_records (synced)`); err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_location_records_recorded_at ON location_records (recorded_at)`)
	return err
}

// AddLocation appends a record with synced=0 and returns the assigned id.
func (s *Store) AddLocation(ctx context.Context, rec LocationRecord) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO location_records (guid, session_id, latitude, longitude, accuracy_m, speed_kmh, recorded_at, synced)
		VALUES ($1, NULLIF($2,'')::uuid, $3, $4, $5, $6, $7, 0)
		RETURNING id
	`, rec.GUID, rec.SessionID, rec.Latitude, rec.Longitude, rec.AccuracyM, rec.SpeedKmh, rec.RecordedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddLocations is the bulk variant of AddLocation. Inserts run one by one;
// on a mid-sequence failure the ids inserted before it are still returned.
func (s *Store) AddLocations(ctx context.Context, recs []LocationRecord) ([]int64, error) {
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		id, err := s.AddLocation(ctx, rec)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetUnsynced returns one page of unsynced records, newest first. Pages are
// 1-based; ordering is stable on id so repeated reads without intervening
// writes see the same slices.
func (s *Store) GetUnsynced(ctx context.Context, page, pageSize int) ([]LocationRecord, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	rows, err := s.db.Query(ctx, `
		SELECT id, guid, COALESCE(session_id::text,''), latitude, longitude, accuracy_m, speed_kmh, recorded_at, synced
		FROM location_records
		WHERE synced = 0
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// GetAllUnsynced returns every unsynced record in insertion order. Used by
// the sync engine, which drains the whole set rather than a page.
func (s *Store) GetAllUnsynced(ctx context.Context) ([]LocationRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, guid, COALESCE(session_id::text,''), latitude, longitude, accuracy_m, speed_kmh, recorded_at, synced
		FROM location_records
		WHERE synced = 0
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) GetUnsyncedCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM location_records WHERE synced = 0`).Scan(&count)
	return count, err
}

// MarkAsSynced flips synced to 1 for the given ids. Missing or already-synced
// ids are skipped silently.
func (s *Store) MarkAsSynced(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `UPDATE location_records SET synced = 1 WHERE id = ANY($1)`, ids)
	return err
}

// DeleteRecord removes a single record; deleting a missing id is a no-op.
func (s *Store) DeleteRecord(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM location_records WHERE id = $1`, id)
	return err
}

func (s *Store) DeleteRecords(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `DELETE FROM location_records WHERE id = ANY($1)`, ids)
	return err
}

// ClearAll drops every unsynced record. Synced rows are kept as the audit
// trail until the retention policy removes them.
func (s *Store) ClearAll(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM location_records WHERE synced = 0`)
	return err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows rowScanner) ([]LocationRecord, error) {
	var recs []LocationRecord
	for rows.Next() {
		var rec LocationRecord
		if err := rows.Scan(&rec.ID, &rec.GUID, &rec.SessionID, &rec.Latitude, &rec.Longitude, &rec.AccuracyM, &rec.SpeedKmh, &rec.RecordedAt, &rec.Synced); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
