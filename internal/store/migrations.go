package store

import (
	"database/sql"
	"fmt"
	"time"
)

// migration is a single schema upgrade step. Steps are append-only: ids are
// never reused, reordered, or removed once shipped. The body only runs
// against stores created before the step existed; the baseline schema
// already reflects every step, so fresh stores record them without
// executing.
type migration struct {
	ID          int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		ID:          1,
		Description: "add tool_name column to chunks",
		SQL:         `ALTER TABLE chunks ADD COLUMN tool_name TEXT;`,
	},
	{
		ID:          2,
		Description: "add name column to sessions",
		SQL:         `ALTER TABLE sessions ADD COLUMN name TEXT;`,
	},
	{
		ID:          3,
		Description: "index chunks by tool_name",
		SQL:         `CREATE INDEX IF NOT EXISTS idx_chunks_tool ON chunks(tool_name);`,
	},
	{
		ID:          4,
		Description: "index sessions by created_at",
		SQL:         `CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);`,
	},
	{
		ID:          5,
		Description: "create full-text shadow and backfill existing chunks",
		// The rebuild command repopulates the external-content index from
		// the chunks table, covering rows written before the shadow existed.
		SQL: ftsSQL + `INSERT INTO chunks_fts(chunks_fts) VALUES('rebuild');`,
	},
}

// applyMigrations brings an opened database up to date. fresh indicates the
// sessions table did not exist before the baseline schema ran this open.
func applyMigrations(db *sql.DB, fresh bool) error {
	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.ID] {
			continue
		}
		if fresh {
			// Baseline schema already reflects this step.
			if err := recordMigration(db, m); err != nil {
				return err
			}
			continue
		}
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.ID, m.Description, err)
		}
		if err := recordMigration(db, m); err != nil {
			return err
		}
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT id FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading schema_migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}
	return applied, rows.Err()
}

func recordMigration(db *sql.DB, m migration) error {
	_, err := db.Exec(
		"INSERT INTO schema_migrations (id, description, applied_at) VALUES (?, ?, ?)",
		m.ID, m.Description, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording migration %d: %w", m.ID, err)
	}
	return nil
}
