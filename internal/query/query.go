// Package query defines the boolean query model evaluated by the search index.
package query

// DocSet is an unordered set of document ids.
type DocSet map[int64]struct{}

// NewDocSet returns a set holding ids.
func NewDocSet(ids ...int64) DocSet {
	s := make(DocSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s DocSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Runner resolves a single field/value pair to the documents containing it.
// The returned set belongs to the caller.
type Runner interface {
	Lookup(field, value string) DocSet
}

// Query is one of TermQuery, AndQuery or OrQuery.
type Query interface {
	Run(r Runner) DocSet
	isQuery()
}

// Term names a value in a field.
type Term struct {
	Field string
	Value string
}

// TermQuery matches documents containing a single term. The value may be a
// wildcard pattern.
type TermQuery struct {
	Term Term
}

// NewTermQuery returns a query for value in field.
func NewTermQuery(field, value string) *TermQuery {
	return &TermQuery{Term: Term{Field: field, Value: value}}
}

// Run implements Query.
func (q *TermQuery) Run(r Runner) DocSet {
	return r.Lookup(q.Term.Field, q.Term.Value)
}

func (*TermQuery) isQuery() {}

// AndQuery matches documents matched by every subquery. With no subqueries
// it matches nothing.
type AndQuery struct {
	Queries []Query
}

// And combines queries by intersection.
func And(queries ...Query) *AndQuery {
	return &AndQuery{Queries: queries}
}

// Run implements Query.
func (q *AndQuery) Run(r Runner) DocSet {
	if len(q.Queries) == 0 {
		return DocSet{}
	}

	result := q.Queries[0].Run(r)
	for _, sub := range q.Queries[1:] {
		if len(result) == 0 {
			return DocSet{}
		}
		next := sub.Run(r)
		for id := range result {
			if !next.Contains(id) {
				delete(result, id)
			}
		}
	}
	return result
}

func (*AndQuery) isQuery() {}

// OrQuery matches documents matched by any subquery. With no subqueries it
// matches nothing.
type OrQuery struct {
	Queries []Query
}

// Or combines queries by union.
func Or(queries ...Query) *OrQuery {
	return &OrQuery{Queries: queries}
}

// Run implements Query.
func (q *OrQuery) Run(r Runner) DocSet {
	result := DocSet{}
	for _, sub := range q.Queries {
		for id := range sub.Run(r) {
			result[id] = struct{}{}
		}
	}
	return result
}

func (*OrQuery) isQuery() {}
