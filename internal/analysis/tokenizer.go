package analysis

import (
	"bufio"
	"unicode"
	"unicode/utf8"
)

// CharTokenizer returns a split function that emits maximal runs of runes
// accepted by isTokenRune. Every other rune is a boundary and is dropped.
// The returned function holds no state, so one value can back any number of
// concurrent scanners.
func CharTokenizer(isTokenRune func(rune) bool) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		// Skip leading boundary runes.
		start := 0
		for start < len(data) {
			if !atEOF && !utf8.FullRune(data[start:]) {
				return start, nil, nil
			}
			r, width := utf8.DecodeRune(data[start:])
			if isTokenRune(r) {
				break
			}
			start += width
		}

		// Scan until the next boundary.
		for i := start; i < len(data); {
			if !atEOF && !utf8.FullRune(data[i:]) {
				break
			}
			r, width := utf8.DecodeRune(data[i:])
			if !isTokenRune(r) {
				return i + width, data[start:i], nil
			}
			i += width
		}

		if atEOF && len(data) > start {
			return len(data), data[start:], nil
		}
		return start, nil, nil
	}
}

var (
	// LetterOrDigit splits on anything that is not a letter or a digit.
	LetterOrDigit = CharTokenizer(func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})

	// Letter splits on anything that is not a letter.
	Letter = CharTokenizer(unicode.IsLetter)

	// Whitespace splits on whitespace only; punctuation stays in tokens.
	Whitespace = CharTokenizer(func(r rune) bool {
		return !unicode.IsSpace(r)
	})
)
