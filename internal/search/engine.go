// Package search compiles query text and filters into ranked or listing
// queries against the store.
package search

import (
	"context"
	"errors"
	"strings"

	"github.com/aliou/sesame/internal/model"
	"github.com/aliou/sesame/internal/store"
)

// ErrEmptyQuery is returned for an empty or whitespace-only query. It is
// an input error, distinct from a query that matches nothing.
var ErrEmptyQuery = errors.New("search: empty query")

// ListingSentinel bypasses full-text matching and lists sessions by
// recency under the given filters.
const ListingSentinel = "*"

// DefaultLimit caps result pages when the caller does not choose a limit.
// There is deliberately no way to disable the cap.
const DefaultLimit = 10

// listingSnippet stands in for a snippet on unnamed sessions in listing
// mode, where no matched excerpt exists.
const listingSnippet = "(no snippet)"

// Options are the optional constraints on a search.
type Options struct {
	Cwd        string   // prefix filter on the session working directory
	After      string   // inclusive created_at lower bound, ISO-8601
	Before     string   // inclusive created_at upper bound, ISO-8601
	Limit      int      // max results; DefaultLimit when <= 0
	ToolsOnly  bool     // match only tool_call chunks
	ToolName   string   // match only one tool, case-insensitive
	PathFilter string   // substring match against tool-call content
	Exclude    []string // session ids to omit, applied before the limit
	// Status filters on tool outcome (success/error). Meaningful only
	// together with ToolName or ToolsOnly; ignored otherwise.
	Status string
}

// Search answers a query against the store. A query of ListingSentinel
// lists sessions newest-first under the filters with a neutral zero score;
// any other non-blank query runs ranked full-text retrieval, best score
// first. User-supplied text is never interpreted as FTS5 syntax.
func Search(ctx context.Context, st *store.Store, query string, opts Options) ([]model.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, ErrEmptyQuery
	}

	f := store.Filters{
		Cwd:        opts.Cwd,
		After:      opts.After,
		Before:     opts.Before,
		Exclude:    opts.Exclude,
		ToolsOnly:  opts.ToolsOnly,
		ToolName:   opts.ToolName,
		PathFilter: opts.PathFilter,
		Limit:      opts.Limit,
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	// Status without a tool scope is undefined and ignored.
	if opts.Status != "" && (opts.ToolName != "" || opts.ToolsOnly) {
		f.Status = opts.Status
	}

	if trimmed == ListingSentinel {
		results, err := st.ListSessions(ctx, f)
		if err != nil {
			return nil, err
		}
		for i := range results {
			results[i].Score = 0
			if results[i].Name != "" {
				results[i].Snippet = results[i].Name
			} else {
				results[i].Snippet = listingSnippet
			}
		}
		return results, nil
	}

	return st.SearchChunks(ctx, escapeQuery(trimmed), f)
}

// escapeQuery rewrites user text into safe FTS5 term syntax: each
// whitespace-separated token is individually double-quoted so punctuation
// inside a token cannot act as a query operator.
// `fix auth-bug OR` becomes `"fix" "auth-bug" "OR"`.
func escapeQuery(query string) string {
	tokens := strings.Fields(query)
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ReplaceAll(tok, `"`, `""`)
		quoted = append(quoted, `"`+tok+`"`)
	}
	return strings.Join(quoted, " ")
}
