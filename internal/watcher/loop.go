package watcher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

// eventLoop owns the fsnotify watcher and the goroutine draining it. It is
// shared by the directory and file watchdogs.
type eventLoop struct {
	// startMu is held for the whole of Start so that stop never runs
	// against a half-started watchdog.
	startMu sync.Mutex

	mu      sync.Mutex
	started bool
	stopped bool
	running bool

	fsw    *fsnotify.Watcher
	errors chan error
	stopCh chan struct{}
	done   chan struct{}
}

func newEventLoop(opts Options) *eventLoop {
	return &eventLoop{
		errors: make(chan error, opts.ErrorBufferSize),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// open moves the loop to the started state and creates the fsnotify watcher.
// On success the start lock stays held until run or fail.
func (l *eventLoop) open() (*fsnotify.Watcher, error) {
	l.startMu.Lock()
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		l.startMu.Unlock()
		return nil, dserrors.ErrClosed
	}
	if l.started {
		l.startMu.Unlock()
		return nil, dserrors.ErrAlreadyStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		l.startMu.Unlock()
		return nil, dserrors.New(dserrors.ErrCodeWatchFailed, "create fsnotify watcher", err)
	}
	l.fsw = fsw
	l.started = true
	return fsw, nil
}

// fail abandons a start begun by open.
func (l *eventLoop) fail() {
	l.startMu.Unlock()
	_ = l.stop()
}

// run starts the consumer goroutine and releases the start lock. handle is
// called for every fsnotify event, sequentially.
func (l *eventLoop) run(ctx context.Context, handle func(fsnotify.Event)) {
	defer l.startMu.Unlock()

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	go func() {
		defer close(l.done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-l.stopCh:
				return
			case event, ok := <-l.fsw.Events:
				if !ok {
					return
				}
				handle(event)
			case err, ok := <-l.fsw.Errors:
				if !ok {
					return
				}
				l.emitError(err)
			}
		}
	}()
}

func (l *eventLoop) emitError(err error) {
	slog.Warn("watch_error", slog.String("error", err.Error()))
	select {
	case l.errors <- dserrors.New(dserrors.ErrCodeWatchFailed, err.Error(), err):
	default:
	}
}

// stop closes the watcher and waits for the consumer goroutine.
func (l *eventLoop) stop() error {
	l.startMu.Lock()
	defer l.startMu.Unlock()

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	close(l.stopCh)
	running := l.running
	fsw := l.fsw
	l.mu.Unlock()

	if running {
		<-l.done
	}

	var err error
	if fsw != nil {
		err = fsw.Close()
	}
	close(l.errors)
	return err
}
