// Package index brings the store's session set up to date with a source
// directory, re-parsing only files whose modification time changed.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aliou/sesame/internal/format"
	"github.com/aliou/sesame/internal/model"
	"github.com/aliou/sesame/internal/source"
	"github.com/aliou/sesame/internal/store"
)

// IndexSessions scans sourceDir (recursing exactly one level into
// subdirectories), parses candidate files through the adapter, and writes
// added or changed sessions through the store. Per-file failures are
// isolated: they count toward Errors and never abort the run. An
// unreadable sourceDir yields a zero result with ScanFailed set rather
// than an error.
func IndexSessions(ctx context.Context, st *store.Store, sourceDir string, adapter source.Adapter) (model.IndexResult, error) {
	var result model.IndexResult

	files, ok := scanOneLevel(sourceDir)
	if !ok {
		result.ScanFailed = true
		return result, nil
	}

	peeker, _ := adapter.(source.SessionIDPeeker)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !adapter.CanParse(path) {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			result.Errors++
			slog.Warn("indexing: stat failed", "path", path, "error", err)
			continue
		}
		mtime := info.ModTime().UnixMilli()

		// Fast path: a cheap id recovery plus an identical stored mtime
		// means no parse and no write.
		if peeker != nil {
			if id := peeker.PeekSessionID(path); id != "" {
				stored, exists, err := st.GetSessionMtime(ctx, id)
				if err != nil {
					return result, err
				}
				if exists && stored == mtime {
					result.Skipped++
					continue
				}
			}
		}

		switch outcome, err := indexFile(ctx, st, adapter, path, mtime); {
		case err != nil:
			result.Errors++
			slog.Warn("indexing: file failed", "path", path, "error", err)
		case outcome == outcomeAdded:
			result.Added++
		default:
			result.Updated++
		}
	}

	return result, nil
}

type fileOutcome int

const (
	outcomeAdded fileOutcome = iota
	outcomeUpdated
)

// indexFile fully parses one file and replaces its session. Replacement is
// delete-then-insert, never a merge.
func indexFile(ctx context.Context, st *store.Store, adapter source.Adapter, path string, mtime int64) (fileOutcome, error) {
	parsed, err := adapter.Parse(path)
	if err != nil {
		return 0, fmt.Errorf("parsing: %w", err)
	}

	// The cheap id recovery may have failed or disagreed with the parsed
	// id, so the existence check runs again here.
	_, exists, err := st.GetSessionMtime(ctx, parsed.ID)
	if err != nil {
		return 0, err
	}
	if exists {
		if err := st.DeleteSession(ctx, parsed.ID); err != nil {
			return 0, err
		}
	}

	sess := model.Session{
		ID:           parsed.ID,
		Source:       parsed.Source,
		Path:         path,
		Cwd:          parsed.Cwd,
		Name:         parsed.Name,
		CreatedAt:    parsed.CreatedAt,
		ModifiedAt:   parsed.ModifiedAt,
		MessageCount: format.MessageCount(parsed),
		FileMtime:    mtime,
	}

	if err := st.InsertSession(ctx, sess, format.BuildChunks(parsed)); err != nil {
		return 0, err
	}
	if exists {
		return outcomeUpdated, nil
	}
	return outcomeAdded, nil
}

// scanOneLevel enumerates the files of dir and of its immediate
// subdirectories, in enumeration order. Unreadable subdirectories
// contribute no files and no errors; an unreadable dir itself reports
// ok=false.
func scanOneLevel(dir string) (files []string, ok bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !e.IsDir() {
			files = append(files, path)
			continue
		}
		sub, err := os.ReadDir(path)
		if err != nil {
			continue
		}
		for _, se := range sub {
			if !se.IsDir() {
				files = append(files, filepath.Join(path, se.Name()))
			}
		}
	}
	return files, true
}
