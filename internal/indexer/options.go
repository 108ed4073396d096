package indexer

import (
	"runtime"
	"time"

	"github.com/Aman-CERP/dirsearch/internal/query"
	"github.com/Aman-CERP/dirsearch/internal/watcher"
)

// Field names of indexed file documents.
const (
	FieldPath    = "path"
	FieldContent = "content"
)

// Options configures an Orchestrator.
type Options struct {
	// Workers bounds how many files are indexed at once.
	// Default: runtime.NumCPU()
	Workers int

	// ReadRetryDelay is the pause between attempts to open a locked file.
	// Default: 10ms
	ReadRetryDelay time.Duration

	// MaxFileSize skips larger files. Zero means no limit.
	// Default: 0
	MaxFileSize int64

	// DefaultOperator joins the words of a Search query.
	// Default: query.OperatorAnd
	DefaultOperator query.Operator

	// Watch configures the watchdogs created by AddDirectory and AddFile.
	Watch watcher.Options
}

// DefaultOptions returns the default orchestrator options.
func DefaultOptions() Options {
	return Options{
		Workers:         runtime.NumCPU(),
		ReadRetryDelay:  10 * time.Millisecond,
		DefaultOperator: query.OperatorAnd,
		Watch:           watcher.DefaultOptions(),
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.Workers <= 0 {
		o.Workers = defaults.Workers
	}
	if o.ReadRetryDelay <= 0 {
		o.ReadRetryDelay = defaults.ReadRetryDelay
	}
	o.Watch = o.Watch.WithDefaults()
	return o
}
