package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/aliou/sesame/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testSession(id string) model.Session {
	return model.Session{
		ID:         id,
		Source:     "claude-code",
		Path:       "/logs/" + id + ".jsonl",
		Cwd:        "/home/dev/proj",
		CreatedAt:  "2025-06-01T10:00:00Z",
		ModifiedAt: "2025-06-01T11:00:00Z",
		FileMtime:  1717236000000,
	}
}

func messageChunk(seq int, content string) model.Chunk {
	return model.Chunk{Kind: model.KindMessage, Role: "user", Seq: seq, Content: content}
}

func TestOpen_FreshStoreRecordsAllMigrations(t *testing.T) {
	st := openTestStore(t)

	applied, err := appliedMigrations(st.db)
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != len(migrations) {
		t.Fatalf("applied = %d migrations, want %d", len(applied), len(migrations))
	}
	for _, m := range migrations {
		if !applied[m.ID] {
			t.Errorf("migration %d not recorded", m.ID)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	st, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.InsertSession(context.Background(), testSession("s1"), []model.Chunk{messageChunk(0, "hello")}); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopening an existing store must be idempotent.
	st2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = st2.Close() }()

	count, err := st2.SessionCount(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("session count after reopen = %d, want 1", count)
	}
}

func TestOpen_LegacyStoreRunsMigrationBodies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	// A store from before the tool_name and name columns existed.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	legacy := `
	CREATE TABLE sessions (
		id TEXT PRIMARY KEY, source TEXT NOT NULL, path TEXT NOT NULL,
		cwd TEXT, created_at TEXT, modified_at TEXT,
		message_count INTEGER NOT NULL DEFAULT 0,
		file_mtime INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		kind TEXT NOT NULL, role TEXT, seq INTEGER NOT NULL,
		content TEXT NOT NULL, status TEXT
	);`
	if _, err := db.Exec(legacy); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open legacy store: %v", err)
	}
	defer func() { _ = st.Close() }()

	// The upgraded columns must be usable.
	sess := testSession("legacy")
	sess.Name = "named session"
	chunks := []model.Chunk{{Kind: model.KindToolCall, ToolName: "Bash", Seq: 0, Content: "tool: Bash"}}
	if err := st.InsertSession(context.Background(), sess, chunks); err != nil {
		t.Fatalf("insert after migration: %v", err)
	}

	applied, err := appliedMigrations(st.db)
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != len(migrations) {
		t.Errorf("applied = %d migrations, want %d", len(applied), len(migrations))
	}
}

func TestOpen_LegacyStoreBackfillsFullText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	// A store from before the full-text shadow existed, already holding
	// indexed data.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	legacy := `
	CREATE TABLE sessions (
		id TEXT PRIMARY KEY, source TEXT NOT NULL, path TEXT NOT NULL,
		cwd TEXT, created_at TEXT, modified_at TEXT,
		message_count INTEGER NOT NULL DEFAULT 0,
		file_mtime INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		kind TEXT NOT NULL, role TEXT, seq INTEGER NOT NULL,
		content TEXT NOT NULL, status TEXT
	);
	INSERT INTO sessions (id, source, path) VALUES ('old', 'claude-code', '/logs/old.jsonl');
	INSERT INTO chunks (session_id, kind, role, seq, content)
		VALUES ('old', 'message', 'user', 0, 'meridian archive lookup');`
	if _, err := db.Exec(legacy); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open legacy store: %v", err)
	}
	defer func() { _ = st.Close() }()

	// Rows written before the shadow existed must be searchable after the
	// upgrade backfill.
	results, err := st.SearchChunks(context.Background(), `"meridian"`, Filters{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].SessionID != "old" {
		t.Errorf("search over backfilled data = %v, want the legacy session", results)
	}
}

func TestInsertSession_Atomicity(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.InsertSession(ctx, testSession("dup"), []model.Chunk{messageChunk(0, "first")}); err != nil {
		t.Fatal(err)
	}

	// A second insert with the same id violates the primary key; nothing
	// from the failed transaction may remain.
	err := st.InsertSession(ctx, testSession("dup"), []model.Chunk{
		messageChunk(0, "second"), messageChunk(1, "third"),
	})
	if err == nil {
		t.Fatal("expected constraint violation, got nil")
	}

	var chunkCount int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&chunkCount); err != nil {
		t.Fatal(err)
	}
	if chunkCount != 1 {
		t.Errorf("chunk count = %d, want 1 (failed tx must roll back)", chunkCount)
	}
}

func TestDeleteSession_Cascade(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	chunks := []model.Chunk{
		messageChunk(0, "zanzibar archipelago shipping"),
		messageChunk(1, "more zanzibar detail"),
	}
	if err := st.InsertSession(ctx, testSession("s1"), chunks); err != nil {
		t.Fatal(err)
	}

	if err := st.DeleteSession(ctx, "s1"); err != nil {
		t.Fatal(err)
	}

	var chunkCount int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&chunkCount); err != nil {
		t.Fatal(err)
	}
	if chunkCount != 0 {
		t.Errorf("chunk count after delete = %d, want 0", chunkCount)
	}

	// The full-text shadow must be gone too: the term only appeared in
	// the deleted chunks.
	results, err := st.SearchChunks(ctx, `"zanzibar"`, Filters{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("search after cascade delete returned %d results, want 0", len(results))
	}
}

func TestDeleteSession_UnknownIDIsNoop(t *testing.T) {
	st := openTestStore(t)
	if err := st.DeleteSession(context.Background(), "missing"); err != nil {
		t.Fatalf("deleting unknown session: %v", err)
	}
}

func TestGetSessionMtime(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.GetSessionMtime(ctx, "nope"); err != nil || ok {
		t.Fatalf("unknown session: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	if err := st.InsertSession(ctx, testSession("s1"), nil); err != nil {
		t.Fatal(err)
	}
	mtime, ok, err := st.GetSessionMtime(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || mtime != 1717236000000 {
		t.Errorf("mtime = %d ok = %v, want 1717236000000 true", mtime, ok)
	}
}

func TestMetadata_LastWriteWins(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.GetMetadata(ctx, "k"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := st.SetMetadata(ctx, "k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetMetadata(ctx, "k", "v2"); err != nil {
		t.Fatal(err)
	}

	v, ok, err := st.GetMetadata(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if v != "v2" {
		t.Errorf("value = %q, want v2", v)
	}
}

func TestStats(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.InsertSession(ctx, testSession("s1"), []model.Chunk{
		messageChunk(0, "one"), messageChunk(1, "two"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetMetadata(ctx, LastSyncKey, "2025-06-01T12:00:00Z"); err != nil {
		t.Fatal(err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SessionCount != 1 {
		t.Errorf("SessionCount = %d, want 1", stats.SessionCount)
	}
	if stats.ChunkCount != 2 {
		t.Errorf("ChunkCount = %d, want 2", stats.ChunkCount)
	}
	if stats.SizeBytes <= 0 {
		t.Errorf("SizeBytes = %d, want > 0", stats.SizeBytes)
	}
	if stats.LastSyncAt != "2025-06-01T12:00:00Z" {
		t.Errorf("LastSyncAt = %q", stats.LastSyncAt)
	}
}

func TestDropAll(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.InsertSession(ctx, testSession("s1"), []model.Chunk{messageChunk(0, "content")}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetMetadata(ctx, "k", "v"); err != nil {
		t.Fatal(err)
	}

	if err := st.DropAll(ctx); err != nil {
		t.Fatalf("DropAll: %v", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SessionCount != 0 || stats.ChunkCount != 0 {
		t.Errorf("stats after drop = %+v, want empty", stats)
	}
	if _, ok, _ := st.GetMetadata(ctx, "k"); ok {
		t.Error("metadata survived DropAll")
	}

	// Equivalent to a brand-new store: ledger fully satisfied, writable.
	applied, err := appliedMigrations(st.db)
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != len(migrations) {
		t.Errorf("applied = %d migrations after drop, want %d", len(applied), len(migrations))
	}
	if err := st.InsertSession(ctx, testSession("s2"), []model.Chunk{messageChunk(0, "fresh")}); err != nil {
		t.Fatalf("insert after drop: %v", err)
	}
}
