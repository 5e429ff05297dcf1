package sqlbuild

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoPredicates is returned by Where.SQL when nothing was added.
var ErrNoPredicates = errors.New("no filter predicates")

// Where collects predicate fragments and their arguments together. Each
// fragment gets the next positional placeholder, so the placeholder index
// always equals the argument's position.
type Where struct {
	fragments []string
	args      []any
}

// Add appends a predicate. format must contain exactly one %s, which is
// replaced by the placeholder bound to arg.
func (w *Where) Add(format string, arg any) {
	w.args = append(w.args, arg)
	w.fragments = append(w.fragments, fmt.Sprintf(format, fmt.Sprintf("$%d", len(w.args))))
}

// Len reports how many predicates were added.
func (w *Where) Len() int { return len(w.fragments) }

// Args returns the bound arguments in placeholder order.
func (w *Where) Args() []any { return w.args }

// SQL renders "WHERE p1 AND p2 ...". It refuses to render an empty clause.
func (w *Where) SQL() (string, error) {
	if len(w.fragments) == 0 {
		return "", ErrNoPredicates
	}
	return "WHERE " + strings.Join(w.fragments, " AND "), nil
}
