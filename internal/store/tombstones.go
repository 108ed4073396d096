package store

import "sync"

// Tombstones is the set of deleted document ids.
type Tombstones struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

// NewTombstones returns an empty set.
func NewTombstones() *Tombstones {
	return &Tombstones{ids: make(map[int64]struct{})}
}

// Add marks id as deleted.
func (t *Tombstones) Add(id int64) {
	t.mu.Lock()
	t.ids[id] = struct{}{}
	t.mu.Unlock()
}

// Contains reports whether id is marked deleted.
func (t *Tombstones) Contains(id int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.ids[id]
	return ok
}

// Len returns the number of ids awaiting compaction.
func (t *Tombstones) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ids)
}

// Snapshot returns a copy of the current set.
func (t *Tombstones) Snapshot() map[int64]struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snapshot := make(map[int64]struct{}, len(t.ids))
	for id := range t.ids {
		snapshot[id] = struct{}{}
	}
	return snapshot
}

// Forget removes ids from the set. Ids added after the snapshot that
// produced ids stay in place.
func (t *Tombstones) Forget(ids map[int64]struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range ids {
		delete(t.ids, id)
	}
}

// filter appends the ids of src not marked deleted to dst.
func (t *Tombstones) filter(dst, src []int64) []int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range src {
		if _, deleted := t.ids[id]; !deleted {
			dst = append(dst, id)
		}
	}
	return dst
}
