package query

import "strings"

// Wildcard runes understood by term values.
const (
	Star         = '*'
	QuestionMark = '?'
)

// IsWildcard reports whether value contains a wildcard rune.
func IsWildcard(value string) bool {
	return strings.ContainsAny(value, "*?")
}
