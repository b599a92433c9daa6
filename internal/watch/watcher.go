// Package watch re-indexes session sources as their files change on disk.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aliou/sesame/internal/index"
	"github.com/aliou/sesame/internal/model"
	"github.com/aliou/sesame/internal/source"
	"github.com/aliou/sesame/internal/store"
)

// debounceDelay batches bursts of file events into one indexing pass.
// Session logs are appended line by line, so events arrive in clusters.
const debounceDelay = 1500 * time.Millisecond

// fallbackInterval is a periodic full re-scan for edits fsnotify misses
// (new subdirectories, network mounts).
const fallbackInterval = 5 * time.Minute

// Target is one directory indexed through one adapter.
type Target struct {
	Dir     string
	Adapter source.Adapter
}

// Watcher monitors source directories and runs the indexer on change.
type Watcher struct {
	st      *store.Store
	targets []Target
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
}

// New creates a watcher over the given targets.
func New(st *store.Store, targets []Target) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{st: st, targets: targets, fsw: fsw}, nil
}

// Start runs one initial indexing pass, then watches each target directory
// and its first-level subdirectories until the context is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, t := range w.targets {
		if err := w.fsw.Add(t.Dir); err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("watch: cannot watch dir", "path", t.Dir, "error", err)
			}
			continue
		}
		entries, err := os.ReadDir(t.Dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				_ = w.fsw.Add(filepath.Join(t.Dir, e.Name()))
			}
		}
	}

	w.runIndex(ctx)

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop cancels the watch loop and waits for it to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	_ = w.fsw.Close()
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(fallbackInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			// New per-project subdirectories need their own watch.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.fsw.Add(ev.Name)
				}
			}
			w.scheduleIndex(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watch: fsnotify error", "error", err)

		case <-ticker.C:
			w.runIndex(ctx)
		}
	}
}

// scheduleIndex arms (or re-arms) the debounce timer.
func (w *Watcher) scheduleIndex(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		if !w.pending {
			w.mu.Unlock()
			return
		}
		w.pending = false
		w.mu.Unlock()

		if ctx.Err() == nil {
			w.runIndex(ctx)
		}
	})
}

// runIndex indexes every target and records last_sync_at after a clean run
// that produced work.
func (w *Watcher) runIndex(ctx context.Context) {
	var total model.IndexResult
	for _, t := range w.targets {
		res, err := index.IndexSessions(ctx, w.st, t.Dir, t.Adapter)
		if err != nil {
			slog.Error("watch: indexing failed", "dir", t.Dir, "error", err)
			return
		}
		if res.ScanFailed {
			slog.Warn("watch: source dir unreadable", "dir", t.Dir)
		}
		total.Add(res)
	}

	if total.Added+total.Updated > 0 || total.Skipped > 0 {
		slog.Info("watch: indexed",
			"added", total.Added, "updated", total.Updated,
			"skipped", total.Skipped, "errors", total.Errors)
	}
	if total.Added+total.Updated > 0 && total.Errors == 0 {
		if err := w.st.SetMetadata(ctx, store.LastSyncKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
			slog.Warn("watch: recording sync time failed", "error", err)
		}
	}
}
