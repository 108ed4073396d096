// Package analysis turns raw text into normalized index tokens.
//
// An Analyzer combines three steps:
//   - a tokenizer (a bufio.SplitFunc) cutting the input into raw tokens
//   - Transform, which normalizes a token (NFC, lowercase, ё→е)
//   - a stop word filter applied to the transformed token
//
// Analyze is lazy: tokens are produced while the reader is consumed.
package analysis

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MaxTokenSize bounds a single token. Longer runs fail the stream with
// bufio.ErrTooLong.
const MaxTokenSize = 1024 * 1024

// yoFolder maps the Cyrillic ё to е so both spellings of a word meet.
var yoFolder = strings.NewReplacer("ё", "е")

// casers are not safe for concurrent use; pool them.
var lowerCasers = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Und)
		return &c
	},
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTokenizer replaces the default LetterOrDigit split function.
func WithTokenizer(split bufio.SplitFunc) Option {
	return func(a *Analyzer) {
		a.split = split
	}
}

// WithStopWords replaces the default stop word set.
func WithStopWords(words []string) Option {
	return func(a *Analyzer) {
		a.stopWords = BuildStopWordMap(words, a.Transform)
	}
}

// WithRawTokens makes Analyze also emit the untransformed token ahead of the
// transformed one whenever the two differ.
func WithRawTokens() Option {
	return func(a *Analyzer) {
		a.emitRaw = true
	}
}

// Analyzer is safe for concurrent use once constructed.
type Analyzer struct {
	split     bufio.SplitFunc
	stopWords map[string]struct{}
	emitRaw   bool
}

// NewSimpleAnalyzer returns the default analyzer: letter-or-digit tokens,
// lowercase with ё folding, English and Russian stop words.
func NewSimpleAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{split: LetterOrDigit}
	a.stopWords = DefaultStopWords(a.Transform)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Transform normalizes a single token. It never splits its input.
func (a *Analyzer) Transform(token string) string {
	c := lowerCasers.Get().(*cases.Caser)
	lowered := c.String(norm.NFC.String(token))
	lowerCasers.Put(c)
	return yoFolder.Replace(lowered)
}

// IsStopWord reports whether an already transformed token is dropped.
func (a *Analyzer) IsStopWord(token string) bool {
	_, ok := a.stopWords[token]
	return ok
}

// Analyze returns a lazy stream of the analyzed tokens of r.
func (a *Analyzer) Analyze(r io.Reader) *TokenStream {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxTokenSize)
	scanner.Split(a.split)
	return &TokenStream{analyzer: a, scanner: scanner}
}

// AnalyzeString is Analyze over an in-memory string, collected into a slice.
func (a *Analyzer) AnalyzeString(text string) ([]string, error) {
	stream := a.Analyze(strings.NewReader(text))
	var tokens []string
	for stream.Next() {
		tokens = append(tokens, stream.Token())
	}
	return tokens, stream.Err()
}

// TokenStream iterates analyzed tokens in the manner of bufio.Scanner.
type TokenStream struct {
	analyzer *Analyzer
	scanner  *bufio.Scanner
	pending  []string
	token    string
}

// Next advances to the next token. It returns false at the end of the input
// or on a read error; Err distinguishes the two.
func (s *TokenStream) Next() bool {
	for len(s.pending) == 0 {
		if !s.scanner.Scan() {
			return false
		}
		s.process(s.scanner.Text())
	}
	s.token = s.pending[0]
	s.pending = s.pending[1:]
	return true
}

func (s *TokenStream) process(raw string) {
	a := s.analyzer
	transformed := a.Transform(raw)
	if a.emitRaw && raw != transformed && !a.IsStopWord(raw) {
		s.pending = append(s.pending, raw)
	}
	if !a.IsStopWord(transformed) {
		s.pending = append(s.pending, transformed)
	}
}

// Token returns the token produced by the last call to Next.
func (s *TokenStream) Token() string {
	return s.token
}

// Err returns the first non-EOF error encountered while reading.
func (s *TokenStream) Err() error {
	return s.scanner.Err()
}
