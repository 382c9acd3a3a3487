// internal/adapter/storage/postgres_snapshot_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"locallens/internal/domain/content"
)

// PostgresSnapshotStore implements snapshot storage on Postgres
type PostgresSnapshotStore struct {
	db *pgxpool.Pool
}

// NewPostgresSnapshotStore creates a new snapshot store
func NewPostgresSnapshotStore(db *pgxpool.Pool) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{
		db: db,
	}
}

// EnsureSchema creates the snapshot table if it does not exist
func (s *PostgresSnapshotStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS news_snapshots (
			id UUID PRIMARY KEY,
			location TEXT NOT NULL,
			location_key TEXT NOT NULL,
			item_count INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_news_snapshots_location
			ON news_snapshots (location_key, created_at DESC);
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// SaveSnapshot saves a snapshot to storage
func (s *PostgresSnapshotStore) SaveSnapshot(ctx context.Context, snap content.Snapshot) error {
	query := `
		INSERT INTO news_snapshots (
			id, location, location_key, item_count, created_at, payload
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		ON CONFLICT (id) DO UPDATE
		SET
			item_count = $4,
			created_at = $5,
			payload = $6
	`

	// Set timestamp if not provided
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(snap.Result)
	if err != nil {
		return fmt.Errorf("error marshaling result: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		snap.ID,
		snap.Location,
		locationKey(snap.Location),
		snap.ItemCount,
		snap.CreatedAt,
		payload,
	)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// RecentSnapshots retrieves the newest snapshots for a location
func (s *PostgresSnapshotStore) RecentSnapshots(ctx context.Context, location string, limit int) ([]content.Snapshot, error) {
	query := `
		SELECT id::text, location, item_count, created_at, payload
		FROM news_snapshots
		WHERE location_key = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, locationKey(location), limit)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []content.Snapshot{}
	for rows.Next() {
		var snap content.Snapshot
		var payload []byte

		if err := rows.Scan(
			&snap.ID,
			&snap.Location,
			&snap.ItemCount,
			&snap.CreatedAt,
			&payload,
		); err != nil {
			return nil, fmt.Errorf("error scanning snapshot: %w", err)
		}

		if err := json.Unmarshal(payload, &snap.Result); err != nil {
			return nil, fmt.Errorf("error unmarshaling result: %w", err)
		}

		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}
