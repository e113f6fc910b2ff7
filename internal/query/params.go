// Package query builds parameterized Postgres SQL fragments.
//
// Every placeholder is handed out by Params.Add at the moment its value is
// appended, so the n-th placeholder in generated SQL always refers to the
// n-th bound value.
package query

import (
	"strconv"

	"github.com/jackc/pgx/v5"
)

// Params accumulates positional parameters for one statement.
type Params struct {
	values []any
}

// Add appends v and returns its placeholder ($1, $2, ...).
func (p *Params) Add(v any) string {
	p.values = append(p.values, v)
	return "$" + strconv.Itoa(len(p.values))
}

func (p *Params) Values() []any {
	out := make([]any, len(p.values))
	copy(out, p.values)
	return out
}

// QuoteIdent quotes a column or table name for Postgres.
func QuoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
