// Package search implements the searchable document index on top of an
// analyzer and a store.
package search

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/Aman-CERP/dirsearch/internal/analysis"
	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
	"github.com/Aman-CERP/dirsearch/internal/query"
	"github.com/Aman-CERP/dirsearch/internal/store"
)

// Ensure Index can evaluate queries.
var _ query.Runner = (*Index)(nil)

// Index adds, removes and finds documents. It is safe for concurrent use.
type Index struct {
	analyzer *analysis.Analyzer
	store    store.Store
	closed   atomic.Bool
}

// New creates an index over st using analyzer for analyzed fields and
// query terms. The index owns st and closes it on Close.
func New(analyzer *analysis.Analyzer, st store.Store) (*Index, error) {
	if analyzer == nil {
		return nil, dserrors.InvalidArgument("analyzer must not be nil")
	}
	if st == nil {
		return nil, dserrors.InvalidArgument("store must not be nil")
	}
	return &Index{analyzer: analyzer, store: st}, nil
}

// AddDocument indexes doc under a fresh id and returns it. If a field fails
// to read, the partially indexed document is removed and the error returned.
func (x *Index) AddDocument(doc *Document) (int64, error) {
	if doc == nil {
		return 0, dserrors.InvalidArgument("document must not be nil")
	}
	if x.closed.Load() {
		return 0, dserrors.ErrClosed
	}

	id := x.store.NextDocID()
	for _, f := range doc.Fields {
		if err := x.addField(id, f); err != nil {
			x.store.RemoveDocument(id)
			return 0, err
		}
	}
	return id, nil
}

func (x *Index) addField(id int64, f Field) error {
	if f.source == nil {
		return dserrors.InvalidArgument(fmt.Sprintf("field %q has no content", f.Name))
	}

	stored := f.Flags.Has(FieldStored)
	analyzed := f.Flags.Has(FieldAnalyzed)

	// Analyzed-only fields stream straight from the source.
	if analyzed && !stored {
		return x.addTokens(id, f.Name, f.source)
	}

	raw, err := io.ReadAll(f.source)
	if err != nil {
		return dserrors.IOError(fmt.Sprintf("read field %q", f.Name), err)
	}
	value := string(raw)

	if stored {
		x.store.SetStoredValue(id, f.Name, value)
	}
	if analyzed {
		return x.addTokens(id, f.Name, strings.NewReader(value))
	}
	if value == "" {
		return nil
	}
	return x.store.AddPosting(f.Name, value, id)
}

func (x *Index) addTokens(id int64, field string, r io.Reader) error {
	stream := x.analyzer.Analyze(r)
	for stream.Next() {
		if err := x.store.AddPosting(field, stream.Token(), id); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return dserrors.IOError(fmt.Sprintf("analyze field %q", field), err)
	}
	return nil
}

// RemoveDocument removes every document holding term. The value is matched
// literally, without analysis.
func (x *Index) RemoveDocument(term query.Term) error {
	if x.closed.Load() {
		return dserrors.ErrClosed
	}
	for _, id := range x.store.Postings(term.Field, term.Value) {
		x.store.RemoveDocument(id)
	}
	return nil
}

// UpdateDocument replaces every document holding term with doc and returns
// the new id. It is RemoveDocument followed by AddDocument: a search running
// in between sees neither version.
func (x *Index) UpdateDocument(term query.Term, doc *Document) (int64, error) {
	if doc == nil {
		return 0, dserrors.InvalidArgument("document must not be nil")
	}
	if err := x.RemoveDocument(term); err != nil {
		return 0, err
	}
	return x.AddDocument(doc)
}

// Search evaluates q and returns the matching ids in ascending order.
func (x *Index) Search(q query.Query) ([]int64, error) {
	if q == nil {
		return nil, dserrors.InvalidArgument("query must not be nil")
	}
	if x.closed.Load() {
		return nil, dserrors.ErrClosed
	}

	set := q.Run(x)
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// FieldValue returns the stored value of field for docID, or "" if none.
func (x *Index) FieldValue(docID int64, field string) string {
	v, _ := x.store.StoredValue(docID, field)
	return v
}

// Lookup resolves one term. Values are transformed by the analyzer but not
// split. Wildcard values are expanded against every indexed token and the
// postings of all expansions merged.
func (x *Index) Lookup(field, value string) query.DocSet {
	token := x.analyzer.Transform(value)
	if token == "" {
		return query.DocSet{}
	}

	if !query.IsWildcard(token) {
		return query.NewDocSet(x.store.Postings(field, token)...)
	}

	expansions, err := x.store.WildcardSearch(token)
	if err != nil {
		slog.Debug("wildcard_expansion_failed",
			slog.String("pattern", token),
			slog.String("error", err.Error()))
		return query.DocSet{}
	}

	result := query.DocSet{}
	for _, t := range expansions {
		for _, id := range x.store.Postings(field, t) {
			result[id] = struct{}{}
		}
	}
	return result
}

// Stats reports the underlying store counters.
func (x *Index) Stats() store.Stats {
	return x.store.Stats()
}

// Close closes the store. Calls after the first return nil.
func (x *Index) Close() error {
	if !x.closed.CompareAndSwap(false, true) {
		return nil
	}
	return x.store.Close()
}
