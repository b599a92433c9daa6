// Package model defines the shared data types for sessions, chunks,
// and search results.
package model

// Chunk kinds.
const (
	KindMessage  = "message"
	KindToolCall = "tool_call"
)

// Chunk outcome statuses. An empty status means "not applicable".
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Session is one indexed conversational log file.
type Session struct {
	ID           string
	Source       string // adapter identifier, e.g. "claude-code"
	Path         string // absolute path of the source file
	Cwd          string // working directory recorded in the log, if any
	Name         string // human label (summary line), if any
	CreatedAt    string // RFC3339, empty if unknown
	ModifiedAt   string // RFC3339, empty if unknown
	MessageCount int
	FileMtime    int64 // source file mtime in milliseconds
}

// Chunk is one indexable text unit belonging to a session.
type Chunk struct {
	ID        int64
	SessionID string
	Kind      string // KindMessage or KindToolCall
	Role      string // user/assistant/system, message chunks only
	ToolName  string // tool_call chunks, or message chunks for tool results
	Seq       int    // position within the session, ordering only
	Content   string
	Status    string // StatusSuccess, StatusError, or ""
}

// ToolCall is one tool invocation inside a turn, as parsed by an adapter.
type ToolCall struct {
	Name   string
	Args   map[string]any
	Result string
}

// Turn is one normalized entry of a parsed session.
type Turn struct {
	Role      string
	Text      string
	ToolCalls []ToolCall
	ToolName  string // set when this turn is a tool-result event
	Status    string // tool outcome for tool-result turns
}

// ParsedSession is the adapter output for one log file.
type ParsedSession struct {
	ID         string
	Source     string
	Path       string
	Cwd        string
	Name       string
	CreatedAt  string
	ModifiedAt string
	Turns      []Turn
}

// IndexResult accumulates the outcome of one indexing run.
type IndexResult struct {
	Added   int
	Updated int
	Skipped int
	Errors  int

	// ScanFailed is set when the source directory itself could not be
	// read. Counts are all zero in that case.
	ScanFailed bool
}

// Add merges another result into this one.
func (r *IndexResult) Add(o IndexResult) {
	r.Added += o.Added
	r.Updated += o.Updated
	r.Skipped += o.Skipped
	r.Errors += o.Errors
	r.ScanFailed = r.ScanFailed || o.ScanFailed
}

// SearchResult is one ranked session returned by a query.
type SearchResult struct {
	SessionID  string  `json:"session_id"`
	Source     string  `json:"source"`
	Path       string  `json:"path"`
	Cwd        string  `json:"cwd,omitempty"`
	Name       string  `json:"name,omitempty"`
	Score      float64 `json:"score"`
	CreatedAt  string  `json:"created_at,omitempty"`
	ModifiedAt string  `json:"modified_at,omitempty"`
	Snippet    string  `json:"snippet,omitempty"`
}

// StoreStats summarizes the on-disk index.
type StoreStats struct {
	SessionCount int    `json:"session_count"`
	ChunkCount   int    `json:"chunk_count"`
	SizeBytes    int64  `json:"size_bytes"`
	LastSyncAt   string `json:"last_sync_at,omitempty"`
}
