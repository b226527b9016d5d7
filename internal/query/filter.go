package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/atlekbai/casewatch/internal/filter"
	"github.com/atlekbai/casewatch/internal/schema"
)

// FilterCondition turns a compiled predicate into a Squirrel condition over
// obj's columns. An empty predicate yields nil: no WHERE clause.
func FilterCondition(pred *filter.Predicate, obj *schema.ObjectDef, d Dialect) (sq.Sqlizer, error) {
	if pred.Empty() {
		return nil, nil
	}
	sql, args, err := pred.Positional(func(field string) (filter.ColumnRef, error) {
		fd, ok := obj.Field(field)
		if !ok {
			return filter.ColumnRef{}, fmt.Errorf("%w %q on %s", schema.ErrUnknownField, field, obj.APIName)
		}
		return filter.ColumnRef{Expr: fd.QualifiedColumn(), Placeholder: d.placeholder(fd)}, nil
	})
	if err != nil {
		return nil, err
	}
	return sq.Expr("("+sql+")", args...), nil
}
