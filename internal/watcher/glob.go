package watcher

import (
	"regexp"
	"strings"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

// Glob matches file base names against a shell-style mask. '*' matches any
// run of characters and '?' exactly one; matching ignores case. An empty
// mask matches every name.
type Glob struct {
	pattern string
	re      *regexp.Regexp
}

// CompileGlob compiles pattern.
func CompileGlob(pattern string) (*Glob, error) {
	if pattern == "" {
		return &Glob{}, nil
	}
	if strings.ContainsAny(pattern, `/\`) {
		return nil, dserrors.InvalidArgument("filter must match file names, not paths: " + pattern)
	}

	re, err := regexp.Compile(globToRegex(pattern))
	if err != nil {
		return nil, dserrors.InvalidArgument("invalid filter " + pattern + ": " + err.Error())
	}
	return &Glob{pattern: pattern, re: re}, nil
}

// globToRegex converts a file mask to an anchored case-insensitive regex.
func globToRegex(pattern string) string {
	var result strings.Builder
	result.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '*':
			result.WriteString(".*")
		case '?':
			result.WriteString(".")
		default:
			result.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	result.WriteString("$")
	return result.String()
}

// Match reports whether name matches. Only the base name should be passed.
func (g *Glob) Match(name string) bool {
	if g.re == nil {
		return true
	}
	return g.re.MatchString(name)
}

// String returns the source mask.
func (g *Glob) String() string {
	return g.pattern
}
