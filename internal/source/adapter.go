// Package source defines the log-adapter contract and the Claude Code
// JSONL adapter that implements it.
package source

import "github.com/aliou/sesame/internal/model"

// Adapter detects and parses one session-log format.
type Adapter interface {
	// ID identifies the adapter, e.g. "claude-code".
	ID() string
	// CanParse reports whether the file looks like this adapter's format.
	// It must not fail on unreadable or malformed files — it returns false.
	CanParse(path string) bool
	// Parse reads the whole file into a normalized session.
	Parse(path string) (*model.ParsedSession, error)
}

// SessionIDPeeker is an optional fast path: recover the session id from a
// cheap partial read so unchanged files can be skipped without a full
// parse. An empty return means the id could not be recovered cheaply.
type SessionIDPeeker interface {
	PeekSessionID(path string) string
}

// Registry maps adapter ids to implementations.
type Registry map[string]Adapter

// DefaultRegistry returns the built-in adapters.
func DefaultRegistry() Registry {
	c := NewClaudeAdapter()
	return Registry{c.ID(): c}
}

// Lookup returns the adapter for an id, or nil when unrecognized.
// Unrecognized parser ids mean "skip this source" at the call site.
func (r Registry) Lookup(id string) Adapter {
	return r[id]
}
