package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id             TEXT PRIMARY KEY,
    source         TEXT NOT NULL,
    path           TEXT NOT NULL,
    cwd            TEXT,
    name           TEXT,
    created_at     TEXT,
    modified_at    TEXT,
    message_count  INTEGER NOT NULL DEFAULT 0,
    file_mtime     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_cwd ON sessions(cwd);
CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
CREATE INDEX IF NOT EXISTS idx_sessions_modified ON sessions(modified_at);

CREATE TABLE IF NOT EXISTS chunks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    kind        TEXT NOT NULL,
    role        TEXT,
    tool_name   TEXT,
    seq         INTEGER NOT NULL,
    content     TEXT NOT NULL,
    status      TEXT
);

CREATE INDEX IF NOT EXISTS idx_chunks_session ON chunks(session_id, seq);
CREATE INDEX IF NOT EXISTS idx_chunks_tool ON chunks(tool_name);

` + ftsSQL + `

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
    INSERT INTO chunks_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES ('delete', old.id, old.content);
END;

CREATE TABLE IF NOT EXISTS metadata (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

` + ledgerSQL

// ftsSQL stands alone because the migration that backfills old stores
// needs the same table definition before the baseline schema applies.
const ftsSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
    content,
    content='chunks',
    content_rowid='id',
    tokenize='porter unicode61'
);
`

// ledgerSQL stands alone because a pre-existing store needs the ledger
// before its upgrade steps can run, which is before the rest of the
// schema applies.
const ledgerSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    id           INTEGER PRIMARY KEY,
    description  TEXT NOT NULL,
    applied_at   TEXT NOT NULL
);
`
