package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CompactionInterval = 0
	s, err := NewMemoryStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMemoryStore_NextDocID_StartsAtZeroAndIncreases(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, int64(0), s.NextDocID())
	assert.Equal(t, int64(1), s.NextDocID())
	assert.Equal(t, int64(2), s.NextDocID())
}

func TestMemoryStore_NextDocID_UniqueUnderConcurrency(t *testing.T) {
	// Given: a store shared by many goroutines
	s := newTestStore(t)

	const goroutines, perGoroutine = 16, 500
	ids := make(chan int64, goroutines*perGoroutine)

	// When: ids are allocated concurrently
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				ids <- s.NextDocID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	// Then: no id is handed out twice
	seen := make(map[int64]struct{})
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestMemoryStore_Postings_PreservesOccurrences(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddPosting("content", "hello", 1))
	require.NoError(t, s.AddPosting("content", "hello", 1))
	require.NoError(t, s.AddPosting("content", "hello", 2))

	assert.Equal(t, []int64{1, 1, 2}, s.Postings("content", "hello"))
}

func TestMemoryStore_Postings_UnknownFieldOrToken(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddPosting("content", "hello", 0))

	assert.Empty(t, s.Postings("path", "hello"))
	assert.Empty(t, s.Postings("content", "world"))
	assert.NotNil(t, s.Postings("nope", "nope"))
}

func TestMemoryStore_Postings_ReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddPosting("content", "hello", 5))

	ids := s.Postings("content", "hello")
	ids[0] = 99

	assert.Equal(t, []int64{5}, s.Postings("content", "hello"))
}

func TestMemoryStore_AddPosting_EmptyToken(t *testing.T) {
	s := newTestStore(t)

	err := s.AddPosting("content", "", 0)

	assert.ErrorIs(t, err, dserrors.ErrInvalidArgument)
}

func TestMemoryStore_RemoveDocument_InvisibleBeforeCompactionGoneAfter(t *testing.T) {
	// Given: two documents sharing a token
	s := newTestStore(t)
	require.NoError(t, s.AddPosting("content", "hello", 0))
	require.NoError(t, s.AddPosting("content", "hello", 1))
	s.SetStoredValue(0, "path", "/a")

	// When: the first is removed
	s.RemoveDocument(0)
	s.RemoveDocument(0)

	// Then: reads skip it while the posting is still physically present
	assert.Equal(t, []int64{1}, s.Postings("content", "hello"))
	assert.Equal(t, 2, s.Stats().Postings)
	assert.Equal(t, 1, s.Stats().PendingTombstones)

	// When: compaction runs
	removed := s.Compact()

	// Then: the posting is physically gone and the tombstone forgotten
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Stats().Postings)
	assert.Equal(t, 0, s.Stats().PendingTombstones)
	assert.Equal(t, []int64{1}, s.Postings("content", "hello"))
	_, ok := s.StoredValue(0, "path")
	assert.False(t, ok)
}

func TestMemoryStore_Compact_Empty(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, 0, s.Compact())
	assert.False(t, s.Stats().LastCompaction.IsZero())
}

func TestMemoryStore_Compact_Background(t *testing.T) {
	// Given: a store with a short compaction interval
	s, err := NewMemoryStore(Config{CompactionInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.AddPosting("content", "x", s.NextDocID()))

	// When: the document is removed
	s.RemoveDocument(0)

	// Then: the ticker purges it without an explicit Compact
	require.Eventually(t, func() bool {
		return s.Stats().Postings == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMemoryStore_Compact_ConcurrentWithWrites(t *testing.T) {
	// Given: a store receiving postings and removals while compacting
	s := newTestStore(t)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := s.NextDocID()
				_ = s.AddPosting("content", fmt.Sprintf("t%d", i%10), id)
				if i%2 == 0 {
					s.RemoveDocument(id)
				}
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.Compact()
		}
	}()
	wg.Wait()

	// When: a final compaction runs
	s.Compact()

	// Then: exactly the live half remains
	total := 0
	for i := 0; i < 10; i++ {
		total += len(s.Postings("content", fmt.Sprintf("t%d", i)))
	}
	assert.Equal(t, 400, total)
	assert.Equal(t, 400, s.Stats().Postings)
	assert.Equal(t, 0, s.Stats().PendingTombstones)
}

func TestMemoryStore_StoredValue(t *testing.T) {
	s := newTestStore(t)

	s.SetStoredValue(3, "path", "/tmp/a.txt")
	s.SetStoredValue(3, "path", "/tmp/b.txt")

	v, ok := s.StoredValue(3, "path")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/b.txt", v)

	_, ok = s.StoredValue(3, "content")
	assert.False(t, ok)
	_, ok = s.StoredValue(4, "path")
	assert.False(t, ok)
}

func TestMemoryStore_WildcardSearch_CacheSeesNewTokens(t *testing.T) {
	// Given: a store with one matching token
	s := newTestStore(t)
	require.NoError(t, s.AddPosting("content", "hello", 0))

	first, err := s.WildcardSearch("hel*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hello"}, first)

	// When: another matching token is indexed after the expansion was cached
	require.NoError(t, s.AddPosting("content", "helium", 1))

	// Then: the stale expansion is not served
	second, err := s.WildcardSearch("hel*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hello", "helium"}, second)
}

func TestMemoryStore_WildcardSearch_NoCache(t *testing.T) {
	s, err := NewMemoryStore(Config{})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.AddPosting("content", "world", 0))

	tokens, err := s.WildcardSearch("w?rld")
	require.NoError(t, err)
	assert.Equal(t, []string{"world"}, tokens)

	_, err = s.WildcardSearch("")
	assert.ErrorIs(t, err, dserrors.ErrInvalidArgument)
}

func TestMemoryStore_Stats(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddPosting("content", "a1", s.NextDocID()))
	require.NoError(t, s.AddPosting("content", "b2", s.NextDocID()))
	require.NoError(t, s.AddPosting("path", "a1", 1))

	stats := s.Stats()

	assert.Equal(t, int64(2), stats.DocumentsAllocated)
	assert.Equal(t, 2, stats.DistinctTokens)
	assert.Equal(t, 3, stats.PostingLists)
	assert.Equal(t, 3, stats.Postings)
}

func TestMemoryStore_Close_Idempotent(t *testing.T) {
	s, err := NewMemoryStore(DefaultConfig())
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
