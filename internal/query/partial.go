package query

import (
	"strings"

	apperrors "github.com/justsurfingit/jobly/internal/errors"
)

// Field is one logical field of a partial update and its new value.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered partial-update payload.
type Fields []Field

// Columns translates logical field names to physical column names.
type Columns map[string]string

// Resolve returns the physical column for field. Fields without an entry
// map to a column of the same name.
func (c Columns) Resolve(field string) string {
	if column, ok := c[field]; ok {
		return column
	}
	return field
}

// Update is a compiled SET clause together with its bound parameters.
type Update struct {
	SetCols string
	params  Params
}

// Bind appends a parameter that follows the SET clause (typically the row
// key in the WHERE clause) and returns its placeholder.
func (u *Update) Bind(v any) string {
	return u.params.Add(v)
}

// Values returns every bound parameter in placeholder order.
func (u *Update) Values() []any {
	return u.params.Values()
}

// PartialUpdate compiles fields into `"col" = $n` assignments joined by
// ", ". It does not check that the resolved columns exist; callers must
// only pass fields allowed by their request schema.
func PartialUpdate(fields Fields, columns Columns) (*Update, error) {
	if len(fields) == 0 {
		return nil, apperrors.BadRequest("No data", nil)
	}

	u := &Update{}
	assignments := make([]string, 0, len(fields))
	for _, f := range fields {
		column := QuoteIdent(columns.Resolve(f.Name))
		assignments = append(assignments, column+" = "+u.params.Add(f.Value))
	}
	u.SetCols = strings.Join(assignments, ", ")

	return u, nil
}
