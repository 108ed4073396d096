package search

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dirsearch/internal/analysis"
	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
	"github.com/Aman-CERP/dirsearch/internal/query"
	"github.com/Aman-CERP/dirsearch/internal/store"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	st, err := store.NewMemoryStore(store.Config{WildcardCacheSize: 16})
	require.NoError(t, err)
	idx, err := New(analysis.NewSimpleAnalyzer(), st)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func addDoc(t *testing.T, idx *Index, name, content string) int64 {
	t.Helper()
	id, err := idx.AddDocument(NewDocument(
		StringField("name", name, FieldStored),
		StringField("content", content, FieldAnalyzed),
	))
	require.NoError(t, err)
	return id
}

func TestNew_NilDependencies(t *testing.T) {
	st, err := store.NewMemoryStore(store.Config{})
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	_, err = New(nil, st)
	assert.ErrorIs(t, err, dserrors.ErrInvalidArgument)

	_, err = New(analysis.NewSimpleAnalyzer(), nil)
	assert.ErrorIs(t, err, dserrors.ErrInvalidArgument)
}

func TestIndex_AddDocument_Nil(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.AddDocument(nil)

	assert.ErrorIs(t, err, dserrors.ErrInvalidArgument)
}

func TestIndex_AddDocument_StoresAndIndexes(t *testing.T) {
	// Given: a document with a stored literal field and an analyzed field
	idx := newTestIndex(t)

	// When: it is added
	id := addDoc(t, idx, "war and peace.txt", "Hello World")

	// Then: the stored field is retrievable and indexed literally
	assert.Equal(t, "war and peace.txt", idx.FieldValue(id, "name"))
	assert.Equal(t, []int64{id}, idx.store.Postings("name", "war and peace.txt"))

	// And: the analyzed field is tokenized but not stored
	assert.Equal(t, "", idx.FieldValue(id, "content"))
	assert.Equal(t, []int64{id}, idx.store.Postings("content", "hello"))
	assert.Equal(t, []int64{id}, idx.store.Postings("content", "world"))
}

func TestIndex_AddDocument_StoredAndAnalyzedReadsOnce(t *testing.T) {
	idx := newTestIndex(t)
	r := &countingReader{r: strings.NewReader("alpha beta")}

	id, err := idx.AddDocument(NewDocument(ReaderField("content", r, FieldStored|FieldAnalyzed)))
	require.NoError(t, err)

	assert.Equal(t, "alpha beta", idx.FieldValue(id, "content"))
	assert.Equal(t, []int64{id}, idx.store.Postings("content", "beta"))
	assert.Equal(t, 1, r.eofs)
}

func TestIndex_AddDocument_EmptyLiteralHasNoPosting(t *testing.T) {
	idx := newTestIndex(t)

	id, err := idx.AddDocument(NewDocument(StringField("name", "", FieldStored)))
	require.NoError(t, err)

	assert.Empty(t, idx.store.Postings("name", ""))
	assert.Equal(t, "", idx.FieldValue(id, "name"))
}

func TestIndex_AddDocument_ReadFailureRemovesPartialDocument(t *testing.T) {
	// Given: a document whose second field fails mid-read
	idx := newTestIndex(t)
	failing := io.MultiReader(strings.NewReader("partial "), errReader{})

	// When: it is added
	_, err := idx.AddDocument(NewDocument(
		StringField("name", "broken", FieldStored),
		ReaderField("content", failing, FieldAnalyzed),
	))

	// Then: the error is reported and nothing from the document is visible
	require.Error(t, err)
	assert.Empty(t, idx.store.Postings("name", "broken"))
	assert.Empty(t, idx.store.Postings("content", "partial"))
}

func TestIndex_Search_AndOfLiteralTerms(t *testing.T) {
	// Given: three documents
	idx := newTestIndex(t)
	a := addDoc(t, idx, "a", "hello world")
	b := addDoc(t, idx, "b", "hello pretty world")
	addDoc(t, idx, "c", "just hello")

	// When: searching hello AND world
	ids, err := idx.Search(query.And(
		query.NewTermQuery("content", "hello"),
		query.NewTermQuery("content", "world"),
	))

	// Then: the first two match, ascending
	require.NoError(t, err)
	assert.Equal(t, []int64{a, b}, ids)
}

func TestIndex_Search_WildcardsAndRemoval(t *testing.T) {
	// Given: documents with overlapping prefixes
	idx := newTestIndex(t)
	addDoc(t, idx, "name1", "hello world")
	addDoc(t, idx, "name2", "hi pretty world")
	addDoc(t, idx, "name3", "hell worm")

	q := query.And(
		query.NewTermQuery("content", "hell*"),
		query.NewTermQuery("content", "wor*"),
	)

	// When: searching with two wildcard terms
	ids, err := idx.Search(q)
	require.NoError(t, err)

	// Then: the documents matching both prefixes are found
	require.Len(t, ids, 2)
	assert.ElementsMatch(t, []string{"name1", "name3"},
		[]string{idx.FieldValue(ids[0], "name"), idx.FieldValue(ids[1], "name")})

	// When: one of them is removed by its literal name
	require.NoError(t, idx.RemoveDocument(query.Term{Field: "name", Value: "name1"}))

	// Then: only the other remains
	ids, err = idx.Search(q)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "name3", idx.FieldValue(ids[0], "name"))
}

func TestIndex_UpdateDocument_ReplacesByTerm(t *testing.T) {
	// Given: two documents with the same name and one with another name
	idx := newTestIndex(t)
	addDoc(t, idx, "report", "draft numbers")
	addDoc(t, idx, "report", "draft figures")
	other := addDoc(t, idx, "memo", "draft agenda")

	// When: the name is updated with new content
	id, err := idx.UpdateDocument(query.Term{Field: "name", Value: "report"}, NewDocument(
		StringField("name", "report", FieldStored),
		StringField("content", "final numbers", FieldAnalyzed),
	))
	require.NoError(t, err)

	// Then: only the new version and the unrelated document remain
	got, err := idx.Search(query.NewTermQuery("content", "draft"))
	require.NoError(t, err)
	assert.Equal(t, []int64{other}, got)

	got, err = idx.Search(query.NewTermQuery("content", "numbers"))
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, got)
	assert.Equal(t, "report", idx.FieldValue(id, "name"))
}

func TestIndex_UpdateDocument_NilAndClosed(t *testing.T) {
	idx := newTestIndex(t)
	kept := addDoc(t, idx, "keep", "hello")

	_, err := idx.UpdateDocument(query.Term{Field: "name", Value: "keep"}, nil)
	assert.ErrorIs(t, err, dserrors.ErrInvalidArgument)
	assert.Equal(t, []int64{kept}, idx.store.Postings("name", "keep"))

	require.NoError(t, idx.Close())
	_, err = idx.UpdateDocument(query.Term{Field: "name", Value: "keep"}, NewDocument())
	assert.ErrorIs(t, err, dserrors.ErrClosed)
}

func TestIndex_Search_ContentWordsAreSearchable(t *testing.T) {
	// Given: documents led by common adverbs and prepositions
	idx := newTestIndex(t)
	words := []string{"very", "about", "only", "more", "again"}
	ids := make(map[string]int64, len(words))
	for _, w := range words {
		ids[w] = addDoc(t, idx, w, w+" hello")
	}

	// When/Then: each word finds its own document
	for _, w := range words {
		got, err := idx.Search(query.NewTermQuery("content", w))
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[w]}, got, w)
	}
}

func TestIndex_Lookup_TransformsTerms(t *testing.T) {
	idx := newTestIndex(t)
	id := addDoc(t, idx, "n", "Ёлка HELLO")

	assert.Equal(t, query.NewDocSet(id), idx.Lookup("content", "HELLO"))
	assert.Equal(t, query.NewDocSet(id), idx.Lookup("content", "елка"))
	assert.Equal(t, query.NewDocSet(id), idx.Lookup("content", "ЁЛ*"))
	assert.Empty(t, idx.Lookup("content", "hello world"))
	assert.Empty(t, idx.Lookup("content", ""))
}

func TestIndex_Lookup_QuestionMark(t *testing.T) {
	idx := newTestIndex(t)
	id := addDoc(t, idx, "n", "world word")

	assert.Equal(t, query.NewDocSet(id), idx.Lookup("content", "wor?d"))
	assert.Empty(t, idx.Lookup("content", "w?"))
}

func TestIndex_Search_NilQuery(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Search(nil)

	assert.ErrorIs(t, err, dserrors.ErrInvalidArgument)
}

func TestIndex_Close(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	_, err := idx.AddDocument(NewDocument())
	assert.ErrorIs(t, err, dserrors.ErrClosed)
	_, err = idx.Search(query.And())
	assert.ErrorIs(t, err, dserrors.ErrClosed)
}

func TestIndex_ConcurrentAddAndSearch(t *testing.T) {
	// Given: writers and readers sharing one index
	idx := newTestIndex(t)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				addDoc(t, idx, "n", "shared token")
			}
		}()
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, err := idx.Search(query.NewTermQuery("content", "sha*"))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	// Then: every document is found
	ids, err := idx.Search(query.NewTermQuery("content", "shared"))
	require.NoError(t, err)
	assert.Len(t, ids, 400)
}

type countingReader struct {
	r    io.Reader
	eofs int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if errors.Is(err, io.EOF) {
		c.eofs++
	}
	return n, err
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}
