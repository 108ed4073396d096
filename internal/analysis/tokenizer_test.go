package analysis

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, split bufio.SplitFunc, text string) []string {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Split(split)
	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return tokens
}

func TestTokenizers(t *testing.T) {
	tests := []struct {
		name  string
		split bufio.SplitFunc
		input string
		want  []string
	}{
		{"letter or digit", LetterOrDigit, "hello, world42! x_y", []string{"hello", "world42", "x", "y"}},
		{"letter", Letter, "abc123def", []string{"abc", "def"}},
		{"whitespace", Whitespace, "  foo-bar\tbaz\n", []string{"foo-bar", "baz"}},
		{"cyrillic", LetterOrDigit, "Привет, мир", []string{"Привет", "мир"}},
		{"empty", LetterOrDigit, "", nil},
		{"only separators", LetterOrDigit, " .,;! ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scanAll(t, tt.split, tt.input))
		})
	}
}

func TestCharTokenizer_MultiByteRunesAcrossBufferBoundary(t *testing.T) {
	// Given: a reader that delivers one byte at a time
	text := "мир мир"
	r := &oneByteReader{data: []byte(text)}

	// When: scanning with the letter tokenizer
	scanner := bufio.NewScanner(r)
	scanner.Split(LetterOrDigit)
	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}

	// Then: runes split across reads are reassembled
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"мир", "мир"}, tokens)
}

type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}
