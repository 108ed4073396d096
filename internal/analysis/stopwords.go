package analysis

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/ru"
)

// functionWords is the English stop list. It holds articles, conjunctions,
// prepositions and auxiliaries only, so content words such as "very" or
// "about" stay searchable.
var functionWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by",
	"for", "if", "in", "into", "is", "it",
	"no", "not", "of", "on", "or", "such",
	"that", "the", "their", "then", "there", "these",
	"they", "this", "to", "was", "will", "with",
}

// DefaultStopWords returns the English function words plus bleve's Russian
// stop list, each word passed through transform so lookups against
// transformed tokens agree.
func DefaultStopWords(transform func(string) string) map[string]struct{} {
	words := make(map[string]struct{}, 512)
	for _, w := range functionWords {
		words[transform(w)] = struct{}{}
	}
	for w := range loadTokenMap(ru.RussianStopWords) {
		if w == "" {
			continue
		}
		words[transform(w)] = struct{}{}
	}
	return words
}

// BuildStopWordMap converts a slice of stop words to a lookup set.
func BuildStopWordMap(stopWords []string, transform func(string) string) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		m[transform(word)] = struct{}{}
	}
	return m
}

// loadTokenMap parses a snowball-format word list. Comment lines and
// trailing "|" comments are stripped by the token map loader.
func loadTokenMap(data []byte) analysis.TokenMap {
	m := analysis.NewTokenMap()
	_ = m.LoadBytes(data)
	return m
}
