package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliou/sesame/internal/model"
)

// Filters are the relational constraints applied alongside a full-text
// match, or on their own in listing mode. Every value is passed as a bound
// parameter; nothing here is ever concatenated into SQL.
type Filters struct {
	Cwd        string   // prefix match against sessions.cwd
	After      string   // inclusive lower bound on created_at
	Before     string   // inclusive upper bound on created_at
	Exclude    []string // session ids to omit, applied before LIMIT
	ToolsOnly  bool     // restrict the match to tool_call chunks
	ToolName   string   // restrict the match to one tool (case-insensitive)
	PathFilter string   // substring match against tool-call content
	Status     string   // tool outcome; callers scope it to a tool filter
	Limit      int
}

const resultColumns = `s.id, s.source, s.path,
	COALESCE(s.cwd, ''), COALESCE(s.name, ''),
	COALESCE(s.created_at, ''), COALESCE(s.modified_at, '')`

// SearchChunks executes a full-text match and joins the hits back to their
// owning sessions. Each session keeps only its best-scoring chunk (bm25:
// more negative is better) and that chunk's snippet; sessions come back
// ordered best first, truncated to the filter limit.
//
// bm25() and snippet() are FTS5 auxiliary functions and cannot appear
// inside an aggregate, so the hits CTE computes them per row; MATERIALIZED
// keeps the planner from flattening it back into the GROUP BY.
func (s *Store) SearchChunks(ctx context.Context, match string, f Filters) ([]model.SearchResult, error) {
	var b strings.Builder
	args := []any{match}

	b.WriteString(`WITH hits AS MATERIALIZED (
			SELECT c.session_id AS session_id,
			       bm25(chunks_fts) AS score,
			       snippet(chunks_fts, 0, '', '', '…', 16) AS snip
			FROM chunks_fts
			JOIN chunks c ON c.id = chunks_fts.rowid
			WHERE chunks_fts MATCH ?`)

	if f.ToolsOnly {
		b.WriteString(" AND c.kind = ?")
		args = append(args, model.KindToolCall)
	}
	if f.ToolName != "" {
		b.WriteString(" AND c.tool_name = ? COLLATE NOCASE")
		args = append(args, f.ToolName)
	}

	b.WriteString(`
		)
		SELECT ` + resultColumns + `, ranked.score, ranked.snip
		FROM sessions s
		JOIN (
			SELECT session_id, MIN(score) AS score, snip
			FROM hits
			GROUP BY session_id
		) ranked ON ranked.session_id = s.id
		WHERE 1=1`)

	args = appendSessionFilters(&b, args, f)

	b.WriteString(" ORDER BY ranked.score ASC, s.id LIMIT ?")
	args = append(args, f.Limit)

	return s.queryResults(ctx, b.String(), args, false)
}

// ListSessions returns sessions matching the filters alone, newest first.
// This backs the "*" listing mode: no relevance signal exists, so ordering
// falls back to modified_at descending.
func (s *Store) ListSessions(ctx context.Context, f Filters) ([]model.SearchResult, error) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + resultColumns + " FROM sessions s WHERE 1=1")

	if f.ToolsOnly {
		b.WriteString(" AND EXISTS (SELECT 1 FROM chunks c WHERE c.session_id = s.id AND c.kind = ?)")
		args = append(args, model.KindToolCall)
	}
	if f.ToolName != "" {
		b.WriteString(" AND EXISTS (SELECT 1 FROM chunks c WHERE c.session_id = s.id AND c.tool_name = ? COLLATE NOCASE)")
		args = append(args, f.ToolName)
	}

	args = appendSessionFilters(&b, args, f)

	b.WriteString(" ORDER BY s.modified_at DESC, s.id LIMIT ?")
	args = append(args, f.Limit)

	return s.queryResults(ctx, b.String(), args, true)
}

// appendSessionFilters adds the session-level constraints shared by both
// query modes.
func appendSessionFilters(b *strings.Builder, args []any, f Filters) []any {
	if f.Cwd != "" {
		b.WriteString(" AND s.cwd LIKE ? || '%'")
		args = append(args, f.Cwd)
	}
	if f.After != "" {
		b.WriteString(" AND s.created_at >= ?")
		args = append(args, f.After)
	}
	if f.Before != "" {
		b.WriteString(" AND s.created_at <= ?")
		args = append(args, f.Before)
	}
	if len(f.Exclude) > 0 {
		// One placeholder per excluded id.
		b.WriteString(" AND s.id NOT IN (")
		b.WriteString(strings.TrimSuffix(strings.Repeat("?,", len(f.Exclude)), ","))
		b.WriteString(")")
		for _, id := range f.Exclude {
			args = append(args, id)
		}
	}
	if f.PathFilter != "" {
		b.WriteString(` AND EXISTS (
			SELECT 1 FROM chunks pc
			WHERE pc.session_id = s.id AND pc.kind = ? AND pc.content LIKE '%' || ? || '%')`)
		args = append(args, model.KindToolCall, f.PathFilter)
	}
	if f.Status != "" {
		// "Session contains at least one chunk with the matching tool
		// scope and outcome." Outcomes live on the tool-result chunks,
		// which carry a tool_name.
		b.WriteString(" AND EXISTS (SELECT 1 FROM chunks sc WHERE sc.session_id = s.id AND sc.status = ?")
		args = append(args, f.Status)
		if f.ToolName != "" {
			b.WriteString(" AND sc.tool_name = ? COLLATE NOCASE")
			args = append(args, f.ToolName)
		} else {
			b.WriteString(" AND sc.tool_name IS NOT NULL")
		}
		b.WriteString(")")
	}
	return args
}

func (s *Store) queryResults(ctx context.Context, query string, args []any, listing bool) ([]model.SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.SearchResult
	for rows.Next() {
		var r model.SearchResult
		dest := []any{&r.SessionID, &r.Source, &r.Path, &r.Cwd, &r.Name, &r.CreatedAt, &r.ModifiedAt}
		if !listing {
			dest = append(dest, &r.Score, &r.Snippet)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
