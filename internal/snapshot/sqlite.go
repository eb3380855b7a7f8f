// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps snapshots in a local SQLite file. It suits a single
// process; use Redis when several API instances share paging state.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the database at path and its schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			depth INTEGER NOT NULL,
			jobs TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_expires_at ON snapshots(expires_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Load returns the live snapshot under key, or ErrMiss when it is absent
// or expired.
func (s *SQLiteStore) Load(ctx context.Context, key string) (Snapshot, error) {
	var (
		depth int
		jobs  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT depth, jobs FROM snapshots WHERE key = ? AND expires_at > ?`,
		key, s.now().UnixNano(),
	).Scan(&depth, &jobs)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrMiss
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}

	snap := Snapshot{Depth: depth}
	if err := json.Unmarshal([]byte(jobs), &snap.Jobs); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

// Save upserts snap under key and sweeps expired rows.
func (s *SQLiteStore) Save(ctx context.Context, key string, snap Snapshot, ttl time.Duration) error {
	jobs, err := json.Marshal(snap.Jobs)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	now := s.now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE expires_at <= ?`, now.UnixNano()); err != nil {
		return fmt.Errorf("sweeping expired snapshots: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (key, depth, jobs, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET depth = excluded.depth, jobs = excluded.jobs, expires_at = excluded.expires_at`,
		key, snap.Depth, string(jobs), now.Add(ttl).UnixNano(),
	); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return tx.Commit()
}
