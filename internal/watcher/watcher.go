package watcher

import (
	"context"
	"time"
)

// ChangeKind classifies a reported change.
type ChangeKind int

const (
	// Existed reports a file found while the watchdog started.
	Existed ChangeKind = iota
	// Created reports a file that appeared, including the new name of a rename.
	Created
	// Updated reports a content change.
	Updated
	// Deleted reports a file that disappeared, including the old name of a rename.
	Deleted
)

// String returns a human-readable representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case Existed:
		return "EXISTED"
	case Created:
		return "CREATED"
	case Updated:
		return "UPDATED"
	case Deleted:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// Event is a single change notification.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Kind is the type of change.
	Kind ChangeKind

	// Timestamp is when the change was observed.
	Timestamp time.Time
}

// Handler receives events. A watchdog never calls its handler concurrently
// with itself, and Existed events are delivered before Start returns.
type Handler func(Event)

// Watchdog watches a directory tree or a single file.
type Watchdog interface {
	// Start registers the watches, reports existing files as Existed, then
	// keeps delivering changes until Stop is called or ctx is done.
	// A watchdog can be started once.
	Start(ctx context.Context, handle Handler) error

	// Stop releases the watches and waits for the event goroutine to exit.
	// Safe to call multiple times, but not from inside the handler.
	Stop() error

	// Errors returns non-fatal watch errors. Errors are dropped when nobody
	// reads the channel. The channel is closed by Stop.
	Errors() <-chan error

	// Root returns the watched directory or file.
	Root() string
}

// Options configures watchdog behavior.
type Options struct {
	// DebounceWindow is the interval within which repeated Updated events
	// for the same path are dropped.
	// Default: 50ms
	DebounceWindow time.Duration

	// ErrorBufferSize is the size of the Errors channel buffer.
	// Default: 16
	ErrorBufferSize int
}

// DefaultOptions returns the default watchdog options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  50 * time.Millisecond,
		ErrorBufferSize: 16,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.ErrorBufferSize == 0 {
		o.ErrorBufferSize = defaults.ErrorBufferSize
	}
	return o
}
