// Package store provides the in-memory persistence layer behind the search
// index: posting lists with tombstone deletion, stored field values, the
// token trie, and document id allocation.
package store

import (
	"time"
)

// Store is the persistence boundary of the search index. Any implementation
// honoring these semantics can replace MemoryStore.
type Store interface {
	// NextDocID allocates a new document id. Ids increase monotonically and
	// are never reused. Safe for concurrent callers.
	NextDocID() int64

	// AddPosting records that docID contains token in field, and registers
	// token for wildcard lookup. Repeated calls add repeated postings.
	AddPosting(field, token string, docID int64) error

	// Postings returns a copy of the live document ids for field and token.
	// Tombstoned ids are never included. Unknown fields or tokens yield an
	// empty slice.
	Postings(field, token string) []int64

	// RemoveDocument tombstones docID. Idempotent.
	RemoveDocument(docID int64)

	// SetStoredValue persists the verbatim value of a stored field.
	SetStoredValue(docID int64, field, value string)

	// StoredValue returns a stored field value and whether one exists.
	StoredValue(docID int64, field string) (string, bool)

	// WildcardSearch returns the indexed tokens matching pattern.
	WildcardSearch(pattern string) ([]string, error)

	// Compact purges tombstoned postings and returns how many were removed.
	Compact() int

	// Stats returns a point-in-time summary.
	Stats() Stats

	// Close stops background work and releases resources.
	Close() error
}

// Stats summarizes store contents.
type Stats struct {
	DocumentsAllocated int64     `json:"documents_allocated"`
	PendingTombstones  int       `json:"pending_tombstones"`
	DistinctTokens     int       `json:"distinct_tokens"`
	PostingLists       int       `json:"posting_lists"`
	Postings           int       `json:"postings"`
	LastCompaction     time.Time `json:"last_compaction"`
}

// Config configures a MemoryStore.
type Config struct {
	// CompactionInterval is the period of the background compaction pass.
	// Zero or negative disables the background pass; Compact still works.
	CompactionInterval time.Duration

	// WildcardCacheSize is the number of cached wildcard expansions.
	// Zero disables the cache.
	WildcardCacheSize int
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		CompactionInterval: 30 * time.Second,
		WildcardCacheSize:  256,
	}
}
