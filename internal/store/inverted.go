package store

import (
	"sync"
	"sync/atomic"
)

// postingList is the ordered list of document ids containing one token in
// one field. A document appears once per occurrence.
type postingList struct {
	mu  sync.Mutex
	ids []int64
}

// InvertedIndex maps field -> token -> posting list. Each list carries its
// own lock, so writers on different tokens never contend.
type InvertedIndex struct {
	fields   sync.Map // string -> *sync.Map (string -> *postingList)
	lists    atomic.Int64
	postings atomic.Int64
}

// NewInvertedIndex returns an empty index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{}
}

func (x *InvertedIndex) tokens(field string) *sync.Map {
	if v, ok := x.fields.Load(field); ok {
		return v.(*sync.Map)
	}
	v, _ := x.fields.LoadOrStore(field, &sync.Map{})
	return v.(*sync.Map)
}

func (x *InvertedIndex) list(field, token string) (*postingList, bool) {
	v, ok := x.fields.Load(field)
	if !ok {
		return nil, false
	}
	l, ok := v.(*sync.Map).Load(token)
	if !ok {
		return nil, false
	}
	return l.(*postingList), true
}

// Add appends docID to the posting list of field and token.
func (x *InvertedIndex) Add(field, token string, docID int64) {
	tokens := x.tokens(field)
	v, ok := tokens.Load(token)
	if !ok {
		var loaded bool
		v, loaded = tokens.LoadOrStore(token, &postingList{})
		if !loaded {
			x.lists.Add(1)
		}
	}
	l := v.(*postingList)
	l.mu.Lock()
	l.ids = append(l.ids, docID)
	l.mu.Unlock()
	x.postings.Add(1)
}

// Postings copies the ids of field and token that tombstones does not hold.
// The copy is taken under the list lock; the caller may keep it.
func (x *InvertedIndex) Postings(field, token string, tombstones *Tombstones) []int64 {
	l, ok := x.list(field, token)
	if !ok {
		return []int64{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return tombstones.filter(make([]int64, 0, len(l.ids)), l.ids)
}

// Purge removes every posting whose id is in deleted, one list at a time.
// It returns the number of postings removed.
func (x *InvertedIndex) Purge(deleted map[int64]struct{}) int {
	if len(deleted) == 0 {
		return 0
	}

	removed := 0
	x.fields.Range(func(_, v any) bool {
		v.(*sync.Map).Range(func(_, lv any) bool {
			removed += lv.(*postingList).purge(deleted)
			return true
		})
		return true
	})
	x.postings.Add(int64(-removed))
	return removed
}

func (l *postingList) purge(deleted map[int64]struct{}) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.ids[:0]
	for _, id := range l.ids {
		if _, gone := deleted[id]; !gone {
			kept = append(kept, id)
		}
	}
	removed := len(l.ids) - len(kept)
	// Shrink lists that lost most of their postings.
	if removed > 0 && cap(kept) > 2*len(kept)+16 {
		kept = append(make([]int64, 0, len(kept)), kept...)
	}
	l.ids = kept
	return removed
}

// PostingListCount returns the number of (field, token) lists.
func (x *InvertedIndex) PostingListCount() int {
	return int(x.lists.Load())
}

// PostingCount returns the number of postings, tombstoned or not.
func (x *InvertedIndex) PostingCount() int {
	return int(x.postings.Load())
}
