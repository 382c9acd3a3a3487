// internal/adapter/storage/sqlite_snapshot_store.go

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"locallens/internal/domain/content"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// SQLiteSnapshotStore keeps aggregation snapshots in a local SQLite file
type SQLiteSnapshotStore struct {
	db *sql.DB
}

// NewSQLiteSnapshotStore opens (and creates) the database at path
func NewSQLiteSnapshotStore(path string) (*SQLiteSnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; in-memory databases exist per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteSnapshotStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteSnapshotStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS news_snapshots (
		id TEXT PRIMARY KEY,
		location TEXT NOT NULL,
		location_key TEXT NOT NULL,
		item_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_news_snapshots_location ON news_snapshots(location_key, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database
func (s *SQLiteSnapshotStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot stores a snapshot, replacing any with the same ID
func (s *SQLiteSnapshotStore) SaveSnapshot(ctx context.Context, snap content.Snapshot) error {
	payload, err := json.Marshal(snap.Result)
	if err != nil {
		return fmt.Errorf("error marshaling result: %w", err)
	}

	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO news_snapshots (id, location, location_key, item_count, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			item_count = excluded.item_count,
			created_at = excluded.created_at,
			payload = excluded.payload
	`,
		snap.ID,
		snap.Location,
		locationKey(snap.Location),
		snap.ItemCount,
		snap.CreatedAt.UTC().UnixNano(),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// RecentSnapshots returns up to limit snapshots for location, newest first
func (s *SQLiteSnapshotStore) RecentSnapshots(ctx context.Context, location string, limit int) ([]content.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, location, item_count, created_at, payload
		FROM news_snapshots
		WHERE location_key = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, locationKey(location), limit)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []content.Snapshot{}
	for rows.Next() {
		var snap content.Snapshot
		var createdAt int64
		var payload string

		if err := rows.Scan(&snap.ID, &snap.Location, &snap.ItemCount, &createdAt, &payload); err != nil {
			return nil, fmt.Errorf("error scanning snapshot: %w", err)
		}

		snap.CreatedAt = time.Unix(0, createdAt).UTC()
		if err := json.Unmarshal([]byte(payload), &snap.Result); err != nil {
			return nil, fmt.Errorf("error unmarshaling result: %w", err)
		}

		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}
