package query

import "strings"

// Where collects predicates that are combined with AND.
type Where struct {
	predicates []string
	params     Params
}

// Compare appends `expr op $n`, binding value.
func (w *Where) Compare(expr, op string, value any) *Where {
	w.predicates = append(w.predicates, expr+" "+op+" "+w.params.Add(value))
	return w
}

// ILike appends a case-insensitive substring match. The wildcards are part
// of the bound value, not of the SQL text.
func (w *Where) ILike(expr, substr string) *Where {
	return w.Compare(expr, "ILIKE", "%"+substr+"%")
}

// Raw appends a predicate that binds no parameters.
func (w *Where) Raw(predicate string) *Where {
	w.predicates = append(w.predicates, predicate)
	return w
}

// String renders " WHERE p1 AND p2 ...", or "" when there are no predicates.
func (w *Where) String() string {
	if len(w.predicates) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.predicates, " AND ")
}

func (w *Where) Args() []any {
	return w.params.Values()
}
