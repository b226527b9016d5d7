package query

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/atlekbai/casewatch/internal/filter"
	"github.com/atlekbai/casewatch/internal/filter/text"
	"github.com/atlekbai/casewatch/internal/schema"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000

	// MaxPage keeps the row offset of any page within int.
	MaxPage = math.MaxInt / MaxPageSize
)

// ErrInvalidParam marks a request parameter the caller got wrong.
var ErrInvalidParam = errors.New("invalid parameter")

type OrderClause struct {
	FieldAPIName string
	Desc         bool
}

// QueryParams is a validated list request. Filter is resolved against the
// object and Predicate is its compiled form.
type QueryParams struct {
	Select    []string
	Filter    *filter.ConditionGroup
	Predicate *filter.Predicate
	Order     *OrderClause
	Page      int
	PageSize  int
}

// Offset returns the number of rows skipped before the current page.
func (p *QueryParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ParamsInput is the raw list request as it arrives on the wire. Filter is
// the JSON tree, Query the textual syntax; at most one may be set.
type ParamsInput struct {
	Select   []string               `json:"select,omitempty"`
	Filter   *filter.ConditionGroup `json:"filter,omitempty"`
	Query    string                 `json:"query,omitempty"`
	Order    string                 `json:"order,omitempty"`
	Page     int                    `json:"page,omitempty"`
	PageSize int                    `json:"pageSize,omitempty"`
}

// ParseParams validates in against obj, resolves the filter against the
// catalog and compiles it.
func ParseParams(obj *schema.ObjectDef, in ParamsInput) (*QueryParams, error) {
	p := &QueryParams{
		Page:     1,
		PageSize: DefaultPageSize,
	}

	for _, name := range in.Select {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, ok := obj.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w %q in select", schema.ErrUnknownField, name)
		}
		p.Select = append(p.Select, f.APIName)
	}

	if ord := strings.TrimSpace(in.Order); ord != "" {
		clause, err := parseOrder(obj, ord)
		if err != nil {
			return nil, err
		}
		p.Order = clause
	}

	if in.Page < 0 {
		return nil, fmt.Errorf("%w: page must be positive, got %d", ErrInvalidParam, in.Page)
	}
	if in.Page > MaxPage {
		return nil, fmt.Errorf("%w: page must be at most %d, got %d", ErrInvalidParam, MaxPage, in.Page)
	}
	if in.Page > 0 {
		p.Page = in.Page
	}
	if in.PageSize < 0 {
		return nil, fmt.Errorf("%w: pageSize must be positive, got %d", ErrInvalidParam, in.PageSize)
	}
	if in.PageSize > 0 {
		p.PageSize = min(in.PageSize, MaxPageSize)
	}

	tree, err := FilterTree(in)
	if err != nil {
		return nil, err
	}
	if err := filter.Validate(tree); err != nil {
		return nil, err
	}
	if p.Filter, err = schema.Resolve(obj, tree); err != nil {
		return nil, err
	}
	if p.Predicate, err = filter.Compile(p.Filter); err != nil {
		return nil, err
	}
	return p, nil
}

// FilterTree returns the tree a request filters by: the JSON filter, the
// parsed text query, or an empty group. Setting both is an error.
func FilterTree(in ParamsInput) (*filter.ConditionGroup, error) {
	q := strings.TrimSpace(in.Query)
	switch {
	case in.Filter != nil && q != "":
		return nil, fmt.Errorf("%w: filter and query are mutually exclusive", ErrInvalidParam)
	case in.Filter != nil:
		return in.Filter, nil
	case q != "":
		return text.Parse(q)
	default:
		return &filter.ConditionGroup{}, nil
	}
}

// parseOrder reads "field" or "field.desc". Field names may themselves be
// dotted, so only a trailing ".asc" or ".desc" is a direction.
func parseOrder(obj *schema.ObjectDef, ord string) (*OrderClause, error) {
	name, desc := ord, false
	if i := strings.LastIndexByte(ord, '.'); i >= 0 {
		switch strings.ToLower(ord[i+1:]) {
		case "desc":
			name, desc = ord[:i], true
		case "asc":
			name = ord[:i]
		}
	}
	f, ok := obj.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w %q in order", schema.ErrUnknownField, name)
	}
	return &OrderClause{FieldAPIName: f.APIName, Desc: desc}, nil
}
