package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

// FileWatchdog watches a single file. It watches the parent directory, so
// the file may be missing at start and may be replaced atomically later.
type FileWatchdog struct {
	path      string
	debouncer *Debouncer
	loop      *eventLoop
	handle    Handler
}

// Ensure FileWatchdog implements Watchdog.
var _ Watchdog = (*FileWatchdog)(nil)

// NewFileWatchdog creates a watchdog for the file at path. The parent
// directory must exist.
func NewFileWatchdog(path string, opts Options) (*FileWatchdog, error) {
	if path == "" {
		return nil, dserrors.InvalidArgument("file path must not be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, dserrors.New(dserrors.ErrCodeInvalidPath, "resolve file path", err)
	}

	parent := filepath.Dir(abs)
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		return nil, dserrors.New(dserrors.ErrCodeFileNotFound,
			fmt.Sprintf("directory %s does not exist", parent), err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, dserrors.New(dserrors.ErrCodeInvalidPath,
			fmt.Sprintf("%s is a directory", abs), nil).
			WithSuggestion("use a directory watch for directories")
	}

	opts = opts.WithDefaults()
	return &FileWatchdog{
		path:      abs,
		debouncer: NewDebouncer(opts.DebounceWindow),
		loop:      newEventLoop(opts),
	}, nil
}

// Start implements Watchdog.
func (w *FileWatchdog) Start(ctx context.Context, handle Handler) error {
	if handle == nil {
		return dserrors.InvalidArgument("handler must not be nil")
	}
	fsw, err := w.loop.open()
	if err != nil {
		return err
	}
	w.handle = handle

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		w.loop.fail()
		return dserrors.New(dserrors.ErrCodeWatchFailed, "watch "+w.path, err)
	}

	if info, err := os.Stat(w.path); err == nil && !info.IsDir() {
		w.report(Existed)
	}
	slog.Debug("file_watch_started", slog.String("path", w.path))

	w.loop.run(ctx, w.handleEvent)
	return nil
}

func (w *FileWatchdog) report(kind ChangeKind) {
	if kind == Deleted {
		w.debouncer.Forget(w.path)
	}
	w.handle(Event{Path: w.path, Kind: kind, Timestamp: time.Now()})
}

func (w *FileWatchdog) handleEvent(event fsnotify.Event) {
	if event.Name != w.path {
		return
	}
	switch {
	case event.Has(fsnotify.Create):
		w.report(Created)
	case event.Has(fsnotify.Write):
		if w.debouncer.Allow(w.path) {
			w.report(Updated)
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.report(Deleted)
	}
}

// Stop implements Watchdog.
func (w *FileWatchdog) Stop() error {
	return w.loop.stop()
}

// Errors implements Watchdog.
func (w *FileWatchdog) Errors() <-chan error {
	return w.loop.errors
}

// Root implements Watchdog.
func (w *FileWatchdog) Root() string {
	return w.path
}
