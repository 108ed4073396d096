package query

import (
	"fmt"
	"strings"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

// Operator combines the terms of a parsed query.
type Operator int

const (
	// OperatorAnd requires every term.
	OperatorAnd Operator = iota
	// OperatorOr requires any term.
	OperatorOr
)

// String returns the config spelling of the operator.
func (o Operator) String() string {
	switch o {
	case OperatorAnd:
		return "and"
	case OperatorOr:
		return "or"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// ParseOperator parses "and" or "or", case-insensitively.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and", "":
		return OperatorAnd, nil
	case "or":
		return OperatorOr, nil
	default:
		return OperatorAnd, dserrors.New(dserrors.ErrCodeInvalidQuery,
			fmt.Sprintf("unknown operator %q", s), nil).
			WithSuggestion("use 'and' or 'or'")
	}
}

// Parser turns free text into a query over a single field.
type Parser struct {
	DefaultField    string
	DefaultOperator Operator
}

// NewParser returns a parser producing terms in field joined by op.
func NewParser(field string, op Operator) *Parser {
	return &Parser{DefaultField: field, DefaultOperator: op}
}

// Parse splits text on whitespace and combines one TermQuery per token.
// Blank text yields a query that matches nothing.
func (p *Parser) Parse(text string) Query {
	words := strings.Fields(text)
	var terms []Query
	for _, w := range words {
		terms = append(terms, NewTermQuery(p.DefaultField, w))
	}

	if p.DefaultOperator == OperatorOr {
		return Or(terms...)
	}
	return And(terms...)
}
