// Package sqlbuild assembles the small dynamic SQL fragments used by the
// catalog stores: SET lists for partial updates and WHERE clauses for
// optional filters. Placeholders are PostgreSQL positional parameters.
package sqlbuild

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData is returned when a partial update carries no fields.
var ErrNoData = errors.New("no data")

// Field is one column assignment in a partial update. Name is the external
// field name; it is translated to a column through the alias table.
type Field struct {
	Name  string
	Value any
}

// Update is the result of PartialUpdate. Values[i] binds to $i+1 in SetClause.
type Update struct {
	SetClause string
	Values    []any
}

// PartialUpdate renders `"col"=$1, "col2"=$2, ...` for the given fields, in
// slice order. Columns are looked up in aliases and fall back to the field
// name.
func PartialUpdate(fields []Field, aliases map[string]string) (Update, error) {
	if len(fields) == 0 {
		return Update{}, ErrNoData
	}

	cols := make([]string, 0, len(fields))
	values := make([]any, 0, len(fields))
	for i, f := range fields {
		col, ok := aliases[f.Name]
		if !ok {
			col = f.Name
		}
		cols = append(cols, fmt.Sprintf(`"%s"=$%d`, col, i+1))
		values = append(values, f.Value)
	}

	return Update{SetClause: strings.Join(cols, ", "), Values: values}, nil
}

// NextPlaceholder returns the placeholder following the SET values, used for
// the key condition of the UPDATE.
func (u Update) NextPlaceholder() string {
	return fmt.Sprintf("$%d", len(u.Values)+1)
}

// Args returns the SET values followed by key.
func (u Update) Args(key any) []any {
	args := make([]any, 0, len(u.Values)+1)
	args = append(args, u.Values...)
	return append(args, key)
}
