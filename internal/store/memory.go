package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
	"github.com/Aman-CERP/dirsearch/internal/trie"
)

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// expansion is a cached wildcard result, valid while the trie version is
// unchanged.
type expansion struct {
	version uint64
	tokens  []string
}

// MemoryStore keeps the whole index in memory. All methods are safe for
// concurrent use.
type MemoryStore struct {
	index      *InvertedIndex
	tombstones *Tombstones
	fields     *FieldStore
	tokens     *trie.Trie
	nextID     atomic.Int64
	cache      *lru.Cache[string, expansion]

	compactMu      sync.Mutex
	lastCompaction atomic.Pointer[time.Time]

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryStore creates a store and starts its background compaction.
func NewMemoryStore(cfg Config) (*MemoryStore, error) {
	s := &MemoryStore{
		index:      NewInvertedIndex(),
		tombstones: NewTombstones(),
		fields:     NewFieldStore(),
		tokens:     trie.New(),
	}

	if cfg.WildcardCacheSize > 0 {
		cache, err := lru.New[string, expansion](cfg.WildcardCacheSize)
		if err != nil {
			return nil, dserrors.ConfigError("invalid wildcard cache size", err)
		}
		s.cache = cache
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	if cfg.CompactionInterval > 0 {
		s.wg.Add(1)
		go s.compactLoop(ctx, cfg.CompactionInterval)
	}

	return s, nil
}

func (s *MemoryStore) compactLoop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Compact()
		}
	}
}

// NextDocID allocates the next document id, starting at 0.
func (s *MemoryStore) NextDocID() int64 {
	return s.nextID.Add(1) - 1
}

// AddPosting records token in field for docID and registers token in the trie.
func (s *MemoryStore) AddPosting(field, token string, docID int64) error {
	if token == "" {
		return dserrors.InvalidArgument("posting token must not be empty")
	}
	if err := s.tokens.Add(token); err != nil {
		return err
	}
	s.index.Add(field, token, docID)
	return nil
}

// Postings returns the live ids for field and token.
func (s *MemoryStore) Postings(field, token string) []int64 {
	return s.index.Postings(field, token, s.tombstones)
}

// RemoveDocument tombstones docID. The postings stay until the next compaction
// but are invisible to Postings immediately.
func (s *MemoryStore) RemoveDocument(docID int64) {
	s.tombstones.Add(docID)
}

// SetStoredValue persists a stored field value.
func (s *MemoryStore) SetStoredValue(docID int64, field, value string) {
	s.fields.SetValue(docID, field, value)
}

// StoredValue returns the stored value of field for docID.
func (s *MemoryStore) StoredValue(docID int64, field string) (string, bool) {
	return s.fields.Value(docID, field)
}

// WildcardSearch expands pattern against every token ever indexed.
func (s *MemoryStore) WildcardSearch(pattern string) ([]string, error) {
	if s.cache == nil {
		return s.tokens.WildcardSearch(pattern)
	}

	version := s.tokens.Version()
	if cached, ok := s.cache.Get(pattern); ok && cached.version == version {
		return cached.tokens, nil
	}

	tokens, err := s.tokens.WildcardSearch(pattern)
	if err != nil {
		return nil, err
	}
	// Tagged with the version read before the search: a word added meanwhile
	// bumps the version and invalidates this entry on the next lookup.
	s.cache.Add(pattern, expansion{version: version, tokens: tokens})
	return tokens, nil
}

// Compact purges the postings of every id tombstoned so far. Ids tombstoned
// while Compact runs are left for the next pass.
func (s *MemoryStore) Compact() int {
	s.compactMu.Lock()
	defer s.compactMu.Unlock()

	start := time.Now()
	snapshot := s.tombstones.Snapshot()
	if len(snapshot) == 0 {
		s.lastCompaction.Store(&start)
		return 0
	}

	removed := s.index.Purge(snapshot)
	s.fields.Drop(snapshot)
	s.tombstones.Forget(snapshot)
	s.lastCompaction.Store(&start)

	slog.Debug("store_compacted",
		slog.Int("documents", len(snapshot)),
		slog.Int("postings_removed", removed),
		slog.Duration("duration", time.Since(start)))
	return removed
}

// Stats returns a snapshot of store counters.
func (s *MemoryStore) Stats() Stats {
	stats := Stats{
		DocumentsAllocated: s.nextID.Load(),
		PendingTombstones:  s.tombstones.Len(),
		DistinctTokens:     s.tokens.Len(),
		PostingLists:       s.index.PostingListCount(),
		Postings:           s.index.PostingCount(),
	}
	if last := s.lastCompaction.Load(); last != nil {
		stats.LastCompaction = *last
	}
	return stats
}

// Close stops background compaction. Calling Close more than once is safe.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
	return nil
}
