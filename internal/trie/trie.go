// Package trie implements a concurrent prefix tree over index tokens with
// wildcard lookup.
//
// The trie stores tokens only. It answers "which literal tokens exist that
// match this pattern", and the caller resolves those tokens to postings.
package trie

import (
	"sync"
	"sync/atomic"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

const (
	// Star matches any run of runes, including an empty one.
	Star = '*'
	// QuestionMark matches exactly one rune.
	QuestionMark = '?'
)

type node struct {
	children sync.Map // rune -> *node
	word     atomic.Pointer[string]
}

func (n *node) child(r rune) (*node, bool) {
	v, ok := n.children.Load(r)
	if !ok {
		return nil, false
	}
	return v.(*node), true
}

func (n *node) childOrCreate(r rune) *node {
	if c, ok := n.child(r); ok {
		return c
	}
	v, _ := n.children.LoadOrStore(r, &node{})
	return v.(*node)
}

func (n *node) eachChild(fn func(*node)) {
	n.children.Range(func(_, v any) bool {
		fn(v.(*node))
		return true
	})
}

// Trie is safe for any mix of concurrent Add and WildcardSearch calls.
type Trie struct {
	root    node
	version atomic.Uint64
	words   atomic.Int64
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{}
}

// Add inserts word. Adding a word that is already present is a no-op.
func (t *Trie) Add(word string) error {
	if word == "" {
		return dserrors.InvalidArgument("trie word must not be empty")
	}

	current := &t.root
	for _, r := range word {
		current = current.childOrCreate(r)
	}

	w := word
	if current.word.CompareAndSwap(nil, &w) {
		t.words.Add(1)
		t.version.Add(1)
	}
	return nil
}

// Contains reports whether word was added.
func (t *Trie) Contains(word string) bool {
	current := &t.root
	for _, r := range word {
		next, ok := current.child(r)
		if !ok {
			return false
		}
		current = next
	}
	return current.word.Load() != nil
}

// Len returns the number of distinct words.
func (t *Trie) Len() int {
	return int(t.words.Load())
}

// Version changes every time a new word becomes visible. Two equal versions
// bracket a period in which WildcardSearch results cannot have grown.
func (t *Trie) Version() uint64 {
	return t.version.Load()
}

// WildcardSearch returns every word matching pattern. '*' matches any run
// of runes and '?' exactly one; every other rune matches itself,
// case-sensitively. Each word is reported once, in no particular order.
func (t *Trie) WildcardSearch(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, dserrors.InvalidArgument("wildcard pattern must not be empty")
	}

	frontier := map[*node]struct{}{&t.root: {}}
	for _, r := range pattern {
		next := make(map[*node]struct{}, len(frontier))
		switch r {
		case QuestionMark:
			for n := range frontier {
				n.eachChild(func(c *node) { next[c] = struct{}{} })
			}
		case Star:
			for n := range frontier {
				collectSubtree(n, next)
			}
		default:
			for n := range frontier {
				if c, ok := n.child(r); ok {
					next[c] = struct{}{}
				}
			}
		}
		if len(next) == 0 {
			return []string{}, nil
		}
		frontier = next
	}

	seen := make(map[string]struct{})
	words := make([]string, 0)
	for n := range frontier {
		w := n.word.Load()
		if w == nil {
			continue
		}
		if _, dup := seen[*w]; dup {
			continue
		}
		seen[*w] = struct{}{}
		words = append(words, *w)
	}
	return words, nil
}

// collectSubtree adds n and every descendant of n to into. Nodes already in
// into are not walked again.
func collectSubtree(n *node, into map[*node]struct{}) {
	if _, ok := into[n]; ok {
		return
	}
	into[n] = struct{}{}
	n.eachChild(func(c *node) { collectSubtree(c, into) })
}
