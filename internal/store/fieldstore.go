package store

import "sync"

// FieldStore holds stored field values keyed by document id, then field name.
type FieldStore struct {
	docs sync.Map // int64 -> *docFields
}

type docFields struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewFieldStore returns an empty field store.
func NewFieldStore() *FieldStore {
	return &FieldStore{}
}

// SetValue stores value for docID and field, replacing any previous value.
func (s *FieldStore) SetValue(docID int64, field, value string) {
	v, _ := s.docs.LoadOrStore(docID, &docFields{values: make(map[string]string)})
	doc := v.(*docFields)
	doc.mu.Lock()
	doc.values[field] = value
	doc.mu.Unlock()
}

// Value returns the stored value and whether it exists.
func (s *FieldStore) Value(docID int64, field string) (string, bool) {
	v, ok := s.docs.Load(docID)
	if !ok {
		return "", false
	}
	doc := v.(*docFields)
	doc.mu.RLock()
	defer doc.mu.RUnlock()
	value, ok := doc.values[field]
	return value, ok
}

// Drop forgets every value of the given documents.
func (s *FieldStore) Drop(ids map[int64]struct{}) {
	for id := range ids {
		s.docs.Delete(id)
	}
}
