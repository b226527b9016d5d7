package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/atlekbai/casewatch/internal/schema"
)

// Builder generates SQL queries for a given object definition.
type Builder interface {
	BuildList(params *QueryParams) (string, []any, error)
	BuildCount(params *QueryParams) (string, []any, error)
	// BuildEstimate returns SELECT 1 FROM ... WHERE ... for use with EXPLAIN (FORMAT JSON).
	BuildEstimate(params *QueryParams) (string, []any, error)
}

// QueryBuilder builds list and count queries; every row is one JSON object
// with joined rows nested under their join name.
type QueryBuilder struct {
	obj     *schema.ObjectDef
	dialect Dialect
}

// NewBuilder returns a query builder for the given object.
func NewBuilder(obj *schema.ObjectDef, d Dialect) Builder {
	return &QueryBuilder{
		obj:     obj,
		dialect: d,
	}
}

func (b *QueryBuilder) BuildList(params *QueryParams) (string, []any, error) {
	qb := sq.Select(b.rowObject(params)+" AS _row").
		From(TableSource(b.obj)).
		PlaceholderFormat(b.dialect.placeholders())

	qb, err := b.applyFilter(b.addJoins(qb), params)
	if err != nil {
		return "", nil, err
	}
	for _, clause := range b.orderBy(params) {
		qb = qb.OrderBy(clause)
	}
	qb = qb.Limit(uint64(params.PageSize)).Offset(uint64(params.Offset()))

	return qb.ToSql()
}

func (b *QueryBuilder) BuildCount(params *QueryParams) (string, []any, error) {
	qb := sq.Select("count(*)").From(TableSource(b.obj)).PlaceholderFormat(b.dialect.placeholders())
	qb, err := b.applyFilter(b.addJoins(qb), params)
	if err != nil {
		return "", nil, err
	}
	return qb.ToSql()
}

func (b *QueryBuilder) BuildEstimate(params *QueryParams) (string, []any, error) {
	qb := sq.Select("1").From(TableSource(b.obj)).PlaceholderFormat(b.dialect.placeholders())
	qb, err := b.applyFilter(b.addJoins(qb), params)
	if err != nil {
		return "", nil, err
	}
	return qb.ToSql()
}

// rowObject builds the JSON object expression for the SELECT clause.
func (b *QueryBuilder) rowObject(params *QueryParams) string {
	selected := selectSet(params.Select)
	var pairs []string
	for i := range b.obj.Fields {
		f := &b.obj.Fields[i]
		if f.Join != "" || !selected(f.APIName) {
			continue
		}
		pairs = append(pairs, QuoteLit(jsonKey(f)), f.QualifiedColumn())
	}
	for i := range b.obj.Joins {
		j := &b.obj.Joins[i]
		var fields []*schema.FieldDef
		for _, f := range b.obj.JoinFields(j.Name) {
			if selected(f.APIName) {
				fields = append(fields, f)
			}
		}
		if len(fields) == 0 {
			continue
		}
		pairs = append(pairs, QuoteLit(j.Name), joinObject(b.dialect, j, fields))
	}
	return b.dialect.jsonObject(pairs)
}

// selectSet reports whether a field is part of the projection; an empty
// selection keeps every field.
func selectSet(names []string) func(string) bool {
	if len(names) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func (b *QueryBuilder) addJoins(qb sq.SelectBuilder) sq.SelectBuilder {
	for i := range b.obj.Joins {
		qb = qb.LeftJoin(joinClause(&b.obj.Joins[i]))
	}
	return qb
}

func (b *QueryBuilder) applyFilter(qb sq.SelectBuilder, params *QueryParams) (sq.SelectBuilder, error) {
	cond, err := FilterCondition(params.Predicate, b.obj, b.dialect)
	if err != nil {
		return qb, err
	}
	if cond != nil {
		qb = qb.Where(cond)
	}
	return qb, nil
}

func (b *QueryBuilder) orderBy(params *QueryParams) []string {
	dir := "ASC"
	if params.Order != nil && params.Order.Desc {
		dir = "DESC"
	}

	var clauses []string
	if params.Order != nil && params.Order.FieldAPIName != "id" {
		if fd, ok := b.obj.Field(params.Order.FieldAPIName); ok {
			clauses = append(clauses, fmt.Sprintf(`%s %s`, fd.QualifiedColumn(), dir))
		}
	}
	clauses = append(clauses, fmt.Sprintf(`%s."id" %s`, QI(schema.BaseAlias), dir))
	return clauses
}
