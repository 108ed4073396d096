package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

// DirectoryWatchdog watches a directory tree recursively and reports files
// whose base name matches a filter.
type DirectoryWatchdog struct {
	root      string
	filter    *Glob
	debouncer *Debouncer
	loop      *eventLoop

	ctx    context.Context
	handle Handler
	fsw    *fsnotify.Watcher

	// known holds every reported file that has not been reported Deleted.
	// It is touched by Start and then only by the consumer goroutine.
	known map[string]struct{}
}

// Ensure DirectoryWatchdog implements Watchdog.
var _ Watchdog = (*DirectoryWatchdog)(nil)

// NewDirectoryWatchdog creates a watchdog for dir. filter is a file mask
// such as "*.txt"; empty matches every file. The directory must exist.
func NewDirectoryWatchdog(dir, filter string, opts Options) (*DirectoryWatchdog, error) {
	if dir == "" {
		return nil, dserrors.InvalidArgument("directory path must not be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, dserrors.New(dserrors.ErrCodeInvalidPath, "resolve directory path", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dserrors.New(dserrors.ErrCodeFileNotFound,
				fmt.Sprintf("directory %s does not exist", abs), err)
		}
		return nil, dserrors.IOError("stat directory "+abs, err)
	}
	if !info.IsDir() {
		return nil, dserrors.New(dserrors.ErrCodeInvalidPath,
			fmt.Sprintf("%s is not a directory", abs), nil).
			WithSuggestion("use a file watch for single files")
	}

	glob, err := CompileGlob(filter)
	if err != nil {
		return nil, err
	}

	opts = opts.WithDefaults()
	return &DirectoryWatchdog{
		root:      abs,
		filter:    glob,
		debouncer: NewDebouncer(opts.DebounceWindow),
		loop:      newEventLoop(opts),
		known:     make(map[string]struct{}),
	}, nil
}

// Start implements Watchdog.
func (w *DirectoryWatchdog) Start(ctx context.Context, handle Handler) error {
	if handle == nil {
		return dserrors.InvalidArgument("handler must not be nil")
	}
	fsw, err := w.loop.open()
	if err != nil {
		return err
	}
	w.ctx = ctx
	w.fsw = fsw
	w.handle = handle

	if err := fsw.Add(w.root); err != nil {
		w.loop.fail()
		return dserrors.New(dserrors.ErrCodeWatchFailed, "watch "+w.root, err)
	}
	w.watchTree(ctx, w.root)
	w.scan(ctx, w.root, Existed)

	slog.Debug("directory_watch_started",
		slog.String("root", w.root),
		slog.String("filter", w.filter.String()),
		slog.Int("files", len(w.known)))

	w.loop.run(ctx, w.handleEvent)
	return nil
}

// watchTree adds a watch for every directory below dir.
func (w *DirectoryWatchdog) watchTree(ctx context.Context, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			slog.Debug("watch_walk_skipped", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.loop.emitError(fmt.Errorf("watch %s: %w", path, err))
		}
		return nil
	})
}

// scan reports every matching file below dir with the given kind.
func (w *DirectoryWatchdog) scan(ctx context.Context, dir string, kind ChangeKind) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			slog.Debug("scan_skipped", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if d.IsDir() || !w.filter.Match(d.Name()) {
			return nil
		}
		w.report(path, kind)
		return nil
	})
}

func (w *DirectoryWatchdog) report(path string, kind ChangeKind) {
	if kind == Deleted {
		delete(w.known, path)
		w.debouncer.Forget(path)
	} else {
		w.known[path] = struct{}{}
	}
	w.handle(Event{Path: path, Kind: kind, Timestamp: time.Now()})
}

func (w *DirectoryWatchdog) handleEvent(event fsnotify.Event) {
	path := event.Name
	switch {
	case event.Has(fsnotify.Create):
		w.onCreate(path)
	case event.Has(fsnotify.Write):
		if w.filter.Match(filepath.Base(path)) && w.debouncer.Allow(path) {
			w.report(path, Updated)
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.onGone(path)
	}
}

func (w *DirectoryWatchdog) onCreate(path string) {
	info, err := os.Lstat(path)
	if err == nil && info.IsDir() {
		// Files created before the watch was in place are found by the scan.
		if err := w.fsw.Add(path); err != nil {
			w.loop.emitError(fmt.Errorf("watch %s: %w", path, err))
		}
		w.watchTree(w.ctx, path)
		w.scan(w.ctx, path, Created)
		return
	}
	if w.filter.Match(filepath.Base(path)) {
		w.report(path, Created)
	}
}

// onGone handles the removal or the old name of a rename. A directory takes
// every known file below it along.
func (w *DirectoryWatchdog) onGone(path string) {
	prefix := path + string(filepath.Separator)
	wasDir := false
	for _, watched := range w.fsw.WatchList() {
		if watched == path || strings.HasPrefix(watched, prefix) {
			wasDir = wasDir || watched == path
			_ = w.fsw.Remove(watched)
		}
	}

	var gone []string
	for known := range w.known {
		if strings.HasPrefix(known, prefix) {
			gone = append(gone, known)
		}
	}
	for _, p := range gone {
		w.report(p, Deleted)
	}

	if _, ok := w.known[path]; ok || !wasDir && len(gone) == 0 && w.filter.Match(filepath.Base(path)) {
		w.report(path, Deleted)
	}
}

// Stop implements Watchdog.
func (w *DirectoryWatchdog) Stop() error {
	return w.loop.stop()
}

// Errors implements Watchdog.
func (w *DirectoryWatchdog) Errors() <-chan error {
	return w.loop.errors
}

// Root implements Watchdog.
func (w *DirectoryWatchdog) Root() string {
	return w.root
}
