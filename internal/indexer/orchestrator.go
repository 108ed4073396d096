// Package indexer keeps a search index in step with watched files.
//
// Watchdogs report changes; the Orchestrator turns every change into an
// index mutation. Changes to the same path are applied strictly in the
// order they were reported, each after the previous one has finished,
// while changes to different paths run in parallel on a bounded pool of
// workers.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
	"github.com/Aman-CERP/dirsearch/internal/query"
	"github.com/Aman-CERP/dirsearch/internal/search"
	"github.com/Aman-CERP/dirsearch/internal/watcher"
)

// SearchIndex is the part of search.Index the orchestrator drives.
type SearchIndex interface {
	AddDocument(doc *search.Document) (int64, error)
	RemoveDocument(term query.Term) error
	UpdateDocument(term query.Term, doc *search.Document) (int64, error)
	Search(q query.Query) ([]int64, error)
	FieldValue(docID int64, field string) string
	Close() error
}

// Ensure search.Index satisfies SearchIndex.
var _ SearchIndex = (*search.Index)(nil)

// Orchestrator owns watchdogs and applies their changes to a SearchIndex.
type Orchestrator struct {
	index  SearchIndex
	opts   Options
	parser *query.Parser
	pool   *semaphore.Weighted
	prog   *progress

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	queues    map[string]*pathQueue
	ready     []string
	watchdogs []watcher.Watchdog
	closed    bool

	closeOnce sync.Once
	closeErr  error
}

// New creates an orchestrator over index. The orchestrator owns index and
// closes it on Close.
func New(index SearchIndex, opts Options) (*Orchestrator, error) {
	if index == nil {
		return nil, dserrors.InvalidArgument("search index must not be nil")
	}
	opts = opts.WithDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		index:  index,
		opts:   opts,
		parser: query.NewParser(FieldContent, opts.DefaultOperator),
		pool:   semaphore.NewWeighted(int64(opts.Workers)),
		prog:   newProgress(),
		ctx:    ctx,
		cancel: cancel,
		queues: make(map[string]*pathQueue),
	}, nil
}

// AddDirectory watches dir recursively for files matching filter and
// indexes the ones already present. The scan runs in the background and
// counts as in-flight work.
func (o *Orchestrator) AddDirectory(dir, filter string) error {
	w, err := watcher.NewDirectoryWatchdog(dir, filter, o.opts.Watch)
	if err != nil {
		return err
	}
	return o.startWatchdog(w)
}

// AddFile watches a single file.
func (o *Orchestrator) AddFile(path string) error {
	w, err := watcher.NewFileWatchdog(path, o.opts.Watch)
	if err != nil {
		return err
	}
	return o.startWatchdog(w)
}

func (o *Orchestrator) startWatchdog(w watcher.Watchdog) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return dserrors.ErrClosed
	}
	o.watchdogs = append(o.watchdogs, w)
	o.wg.Add(1)
	o.mu.Unlock()

	o.prog.track(1)
	go func() {
		defer o.wg.Done()
		defer o.prog.track(-1)

		start := time.Now()
		if err := w.Start(o.ctx, o.handle); err != nil {
			if !errors.Is(err, dserrors.ErrClosed) {
				slog.Error("watch_start_failed",
					slog.String("root", w.Root()),
					slog.String("error", err.Error()))
			}
			return
		}
		slog.Info("watch_started",
			slog.String("root", w.Root()),
			slog.Duration("scan_duration", time.Since(start)))
	}()
	return nil
}

// handle is the watchdog handler.
func (o *Orchestrator) handle(e watcher.Event) {
	o.enqueue(e.Path, e.Kind)
}

// apply performs one change. It runs on a pool slot.
func (o *Orchestrator) apply(path string, kind watcher.ChangeKind) {
	if kind == watcher.Deleted {
		o.unindexFile(path)
		return
	}
	o.indexFile(path, kind == watcher.Updated)
}

// indexFile replaces the document of path with the current file content.
// After an update the file is checked again once the debounce window has
// passed, since writes landing inside the window produce no event.
func (o *Orchestrator) indexFile(path string, recheck bool) {
	start := time.Now()

	f, err := openShared(o.ctx, path, o.opts.ReadRetryDelay)
	if err != nil {
		switch {
		case errors.Is(err, dserrors.ErrFileNotFound):
			slog.Debug("index_skipped_missing", slog.String("path", path))
			o.prog.skipped.Add(1)
		case errors.Is(err, context.Canceled):
		default:
			slog.Warn("index_open_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			o.prog.failed.Add(1)
		}
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		slog.Warn("index_stat_failed", slog.String("path", path), slog.String("error", err.Error()))
		o.prog.failed.Add(1)
		return
	}
	if info.IsDir() {
		return
	}

	term := query.Term{Field: FieldPath, Value: path}
	if o.opts.MaxFileSize > 0 && info.Size() > o.opts.MaxFileSize {
		if err := o.index.RemoveDocument(term); err != nil {
			o.logIndexError(path, err)
			return
		}
		slog.Warn("index_skipped_too_large",
			slog.String("path", path),
			slog.Int64("size", info.Size()),
			slog.Int64("max_size", o.opts.MaxFileSize))
		o.prog.skipped.Add(1)
		return
	}

	id, err := o.index.UpdateDocument(term, search.NewDocument(
		search.StringField(FieldPath, path, search.FieldStored),
		search.ReaderField(FieldContent, f, search.FieldAnalyzed),
	))
	if err != nil {
		o.logIndexError(path, err)
		return
	}

	o.prog.indexed.Add(1)
	slog.Debug("file_indexed",
		slog.String("path", path),
		slog.Int64("doc_id", id),
		slog.Int64("size", info.Size()),
		slog.Duration("duration", time.Since(start)))

	if recheck {
		o.recheckLater(path, info)
	}
}

// recheckLater queues another update for path if, one debounce window from
// now, the file no longer has the size and modification time that were
// indexed. The wait counts as in-flight work.
func (o *Orchestrator) recheckLater(path string, indexed os.FileInfo) {
	window := o.opts.Watch.DebounceWindow
	if window <= 0 {
		return
	}

	o.prog.track(1)
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.prog.track(-1)
		return
	}
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()
		defer o.prog.track(-1)

		timer := time.NewTimer(window)
		defer timer.Stop()
		select {
		case <-o.ctx.Done():
			return
		case <-timer.C:
		}

		current, err := os.Stat(path)
		if err != nil {
			return
		}
		if current.Size() == indexed.Size() && current.ModTime().Equal(indexed.ModTime()) {
			return
		}
		slog.Debug("index_stale_requeued",
			slog.String("path", path),
			slog.Int64("indexed_size", indexed.Size()),
			slog.Int64("size", current.Size()))
		o.enqueue(path, watcher.Updated)
	}()
}

func (o *Orchestrator) unindexFile(path string) {
	if err := o.index.RemoveDocument(query.Term{Field: FieldPath, Value: path}); err != nil {
		o.logIndexError(path, err)
		return
	}
	o.prog.removed.Add(1)
	slog.Debug("file_unindexed", slog.String("path", path))
}

func (o *Orchestrator) logIndexError(path string, err error) {
	if errors.Is(err, dserrors.ErrClosed) {
		return
	}
	o.prog.failed.Add(1)

	fields := dserrors.FormatForLog(err)
	attrs := make([]any, 0, len(fields)+1)
	attrs = append(attrs, slog.String("path", path))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	slog.Warn("index_failed", attrs...)
}

// Search runs text through the default parser over file contents and
// returns the paths of the matching files.
func (o *Orchestrator) Search(text string) ([]string, error) {
	ids, err := o.index.Search(o.parser.Parse(text))
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		if p := o.index.FieldValue(id, FieldPath); p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// OnProgress registers fn for busy/idle transitions.
func (o *Orchestrator) OnProgress(fn ProgressFunc) {
	if fn == nil {
		return
	}
	o.prog.subscribe(fn)
}

// IsIndexing reports whether any change or scan is in flight.
func (o *Orchestrator) IsIndexing() bool {
	return o.prog.indexing.Load()
}

// WaitIdle blocks until no work is in flight or ctx is done.
func (o *Orchestrator) WaitIdle(ctx context.Context) error {
	return o.prog.waitIdle(ctx)
}

// Progress returns a snapshot of indexing activity.
func (o *Orchestrator) Progress() ProgressSnapshot {
	return o.prog.snapshot()
}

// Pending returns the number of paths with queued or running changes.
func (o *Orchestrator) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queues)
}

// Roots returns the watched directories and files.
func (o *Orchestrator) Roots() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	roots := make([]string, 0, len(o.watchdogs))
	for _, w := range o.watchdogs {
		roots = append(roots, w.Root())
	}
	return roots
}

// Close cancels pending work, stops every watchdog, waits for background
// goroutines and closes the index. Calling Close more than once is safe.
func (o *Orchestrator) Close() error {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		o.closed = true
		watchdogs := o.watchdogs
		o.mu.Unlock()

		o.cancel()

		var errs []error
		for _, w := range watchdogs {
			if err := w.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop watch %s: %w", w.Root(), err))
			}
		}
		o.wg.Wait()
		o.drain()

		if err := o.index.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close index: %w", err))
		}
		o.closeErr = errors.Join(errs...)
	})
	return o.closeErr
}
