package service

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/atlekbai/casewatch/internal/filter"
	"github.com/atlekbai/casewatch/internal/filter/text"
	"github.com/atlekbai/casewatch/internal/query"
	"github.com/atlekbai/casewatch/internal/schema"
)

// CompileInput is a filter to compile, as JSON tree or text. With Object
// set, field names are checked against the catalog and SQL is rendered.
type CompileInput struct {
	Object string                 `json:"object,omitempty"`
	Filter *filter.ConditionGroup `json:"filter,omitempty"`
	Query  string                 `json:"query,omitempty"`
}

type CompileResult struct {
	Expression string
	Parameters map[string]any
	Keys       []string
	Depth      int
	// Text is the filter in normal textual form.
	Text string
	// SQL and Args are the Postgres WHERE condition; set only when an
	// object was given.
	SQL  string
	Args []any
}

// CompileFilter compiles a filter without touching a data source.
func CompileFilter(cache *schema.Cache, in CompileInput) (*CompileResult, error) {
	pin := query.ParamsInput{Filter: in.Filter, Query: in.Query}

	var (
		tree *filter.ConditionGroup
		pred *filter.Predicate
		res  = &CompileResult{}
	)
	if in.Object == "" {
		var err error
		if tree, err = query.FilterTree(pin); err != nil {
			return nil, err
		}
		if err := filter.Validate(tree); err != nil {
			return nil, err
		}
		if pred, err = filter.Compile(tree); err != nil {
			return nil, err
		}
	} else {
		obj, err := cache.Lookup(in.Object)
		if err != nil {
			return nil, err
		}
		params, err := query.ParseParams(obj, pin)
		if err != nil {
			return nil, err
		}
		tree, pred = params.Filter, params.Predicate

		cond, err := query.FilterCondition(pred, obj, query.Postgres)
		if err != nil {
			return nil, err
		}
		if cond != nil {
			sql, args, err := cond.ToSql()
			if err != nil {
				return nil, err
			}
			if res.SQL, err = sq.Dollar.ReplacePlaceholders(sql); err != nil {
				return nil, err
			}
			res.Args = args
		}
	}

	res.Expression = pred.Expression
	res.Parameters = pred.Parameters
	res.Keys = pred.Keys()
	res.Depth = filter.Depth(tree)
	res.Text = text.Format(tree)
	return res, nil
}
