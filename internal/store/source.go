// Package store runs compiled list queries against a data source and
// returns pages of JSON rows.
package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/atlekbai/casewatch/internal/query"
	"github.com/atlekbai/casewatch/internal/schema"
)

// Page is one page of list results. Each result is a JSON object with
// joined rows nested under their join name.
type Page struct {
	TotalCount int64
	Page       int
	PageSize   int
	Results    []json.RawMessage
}

// Source lists catalog objects.
type Source interface {
	List(ctx context.Context, obj *schema.ObjectDef, params *query.QueryParams) (*Page, error)
	Ping(ctx context.Context) error
	Close()
}

func newPage(params *query.QueryParams, total int64, rows []json.RawMessage) *Page {
	if rows == nil {
		rows = []json.RawMessage{}
	}
	return &Page{
		TotalCount: total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		Results:    rows,
	}
}

// catalogTables returns every table the objects read, base and joined,
// sorted and without duplicates.
func catalogTables(objs []*schema.ObjectDef) []string {
	seen := make(map[string]bool)
	var tables []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			tables = append(tables, t)
		}
	}
	for _, o := range objs {
		add(o.Table)
		for _, j := range o.Joins {
			add(j.Table)
		}
	}
	sort.Strings(tables)
	return tables
}
