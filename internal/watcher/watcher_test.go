package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the events delivered to a handler.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// index returns the position of the first event for path and kind, or -1.
func (r *recorder) index(path string, kind ChangeKind) int {
	for i, e := range r.snapshot() {
		if e.Path == path && e.Kind == kind {
			return i
		}
	}
	return -1
}

func (r *recorder) has(path string, kind ChangeKind) bool {
	return r.index(path, kind) >= 0
}

func (r *recorder) count(path string, kind ChangeKind) int {
	n := 0
	for _, e := range r.snapshot() {
		if e.Path == path && e.Kind == kind {
			n++
		}
	}
	return n
}

const (
	eventTimeout = 5 * time.Second
	eventPoll    = 10 * time.Millisecond
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestChangeKind_String(t *testing.T) {
	tests := []struct {
		kind ChangeKind
		want string
	}{
		{Existed, "EXISTED"},
		{Created, "CREATED"},
		{Updated, "UPDATED"},
		{Deleted, "DELETED"},
		{ChangeKind(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, 50*time.Millisecond, opts.DebounceWindow)
	assert.Equal(t, 16, opts.ErrorBufferSize)
}

func TestOptions_WithDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Options
	}{
		{
			name: "empty options get defaults",
			opts: Options{},
			want: DefaultOptions(),
		},
		{
			name: "custom values preserved",
			opts: Options{DebounceWindow: time.Second, ErrorBufferSize: 2},
			want: Options{DebounceWindow: time.Second, ErrorBufferSize: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.WithDefaults())
		})
	}
}
