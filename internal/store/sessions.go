package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aliou/sesame/internal/model"
)

// GetSessionMtime returns the stored file mtime (milliseconds) for a
// session id. ok is false when the session is unknown.
func (s *Store) GetSessionMtime(ctx context.Context, id string) (mtime int64, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT file_mtime FROM sessions WHERE id = ?", id).Scan(&mtime)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return mtime, true, nil
}

// InsertSession writes one session and all its chunks in a single
// transaction. Either every row commits or none do; the FTS shadow is
// maintained by triggers inside the same transaction so it is never stale
// relative to committed chunks.
func (s *Store) InsertSession(ctx context.Context, sess model.Session, chunks []model.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO sessions
		(id, source, path, cwd, name, created_at, modified_at, message_count, file_mtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Source, sess.Path,
		nullable(sess.Cwd), nullable(sess.Name),
		nullable(sess.CreatedAt), nullable(sess.ModifiedAt),
		sess.MessageCount, sess.FileMtime,
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", sess.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks
		(session_id, kind, role, tool_name, seq, content, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range chunks {
		_, err := stmt.ExecContext(ctx,
			sess.ID, c.Kind, nullable(c.Role), nullable(c.ToolName),
			c.Seq, c.Content, nullable(c.Status),
		)
		if err != nil {
			return fmt.Errorf("inserting chunk for %s: %w", sess.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteSession removes a session, its chunks, and their full-text entries
// in one transaction. Deleting an unknown id is a no-op.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// The FTS shadow is external-content, so its rows are removed by the
	// chunk delete trigger. Chunks go explicitly rather than via cascade so
	// the trigger is guaranteed to see every row.
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("deleting chunks for %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}

	return tx.Commit()
}

// SessionCount returns the number of indexed sessions.
func (s *Store) SessionCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}

// nullable maps "" to NULL so optional columns stay NULL instead of empty
// strings.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
