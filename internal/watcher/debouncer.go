package watcher

import (
	"sync"
	"time"
)

// sweepThreshold is the table size above which stale stamps are swept.
const sweepThreshold = 1024

// Debouncer drops repeated Updated events. An Updated for a path is dropped
// when it arrives within the window of the last Updated that was let through
// for the same path. Dropped events do not extend the window.
type Debouncer struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewDebouncer creates a debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether an Updated for path should be forwarded, and stamps
// the path if so.
func (d *Debouncer) Allow(path string) bool {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.last[path]; ok && now.Sub(last) < d.window {
		return false
	}
	d.last[path] = now
	if len(d.last) > sweepThreshold {
		d.sweep(now)
	}
	return true
}

// Forget drops the stamp of path.
func (d *Debouncer) Forget(path string) {
	d.mu.Lock()
	delete(d.last, path)
	d.mu.Unlock()
}

// Len returns the number of stamped paths.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.last)
}

func (d *Debouncer) sweep(now time.Time) {
	for path, last := range d.last {
		if now.Sub(last) >= d.window {
			delete(d.last, path)
		}
	}
}
