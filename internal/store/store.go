// Package store owns the on-disk SQLite schema for indexed sessions and
// their searchable chunks, including the FTS5 shadow table and the
// schema-migration ledger.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aliou/sesame/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is a handle to one on-disk index database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the index database at the given path. WAL mode is
// required so searches never block behind a concurrent indexing run.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// init applies the baseline schema and the migration ledger. Whether the
// store is brand new must be decided before anything runs: a fresh store
// gets the current schema and records every step as satisfied, while a
// pre-existing store executes its unapplied step bodies first — the
// baseline DDL indexes columns that only a migration adds to old stores —
// and then the idempotent schema fills in anything still missing.
func (s *Store) init() error {
	fresh, err := s.isFresh()
	if err != nil {
		return err
	}
	if !fresh {
		if _, err := s.db.Exec(ledgerSQL); err != nil {
			return fmt.Errorf("creating ledger: %w", err)
		}
		if err := applyMigrations(s.db, false); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if fresh {
		return applyMigrations(s.db, true)
	}
	return nil
}

// isFresh reports whether the database has no sessions table yet.
func (s *Store) isFresh() (bool, error) {
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'sessions'",
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspecting schema: %w", err)
	}
	return false, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the on-disk location of the store file.
func (s *Store) Path() string {
	return s.path
}

// DropAll destroys every session, chunk, full-text entry, metadata value,
// and the migration ledger, then recreates the current schema as if the
// store were brand new. Used for full rebuilds.
func (s *Store) DropAll(ctx context.Context) error {
	stmts := []string{
		"DROP TRIGGER IF EXISTS chunks_ai",
		"DROP TRIGGER IF EXISTS chunks_ad",
		"DROP TABLE IF EXISTS chunks_fts",
		"DROP TABLE IF EXISTS chunks",
		"DROP TABLE IF EXISTS sessions",
		"DROP TABLE IF EXISTS metadata",
		"DROP TABLE IF EXISTS schema_migrations",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("dropping schema: %w", err)
		}
	}
	return s.init()
}

// GetMetadata returns the value for a bookkeeping key. ok is false when the
// key has never been written.
func (s *Store) GetMetadata(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetMetadata upserts a bookkeeping key. Last write wins.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// LastSyncKey is the metadata key recording the last clean indexing run.
const LastSyncKey = "last_sync_at"

// Stats returns aggregate counts and the on-disk size of the store file.
// A failed stat yields size 0, not an error.
func (s *Store) Stats(ctx context.Context) (model.StoreStats, error) {
	var st model.StoreStats

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&st.SessionCount); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&st.ChunkCount); err != nil {
		return st, err
	}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	if v, ok, err := s.GetMetadata(ctx, LastSyncKey); err != nil {
		return st, err
	} else if ok {
		st.LastSyncAt = v
	}
	return st, nil
}
