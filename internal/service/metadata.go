package service

import (
	"github.com/atlekbai/casewatch/internal/filter"
	"github.com/atlekbai/casewatch/internal/schema"
)

// ── Catalog ─────────────────────────────────────────────────────────

// catalogMetadata renders the catalog as the ListFields payload. Values are
// limited to the types structpb.NewStruct accepts.
func catalogMetadata(cache *schema.Cache) map[string]any {
	objs := cache.Objects()
	objects := make([]any, len(objs))
	for i, o := range objs {
		objects[i] = objectMeta(o)
	}

	comparison := filter.ComparisonOperators()
	cmp := make([]any, len(comparison))
	for i, op := range comparison {
		cmp[i] = string(op)
	}

	return map[string]any{
		"objects": objects,
		"operators": map[string]any{
			"logic":      []any{string(filter.And), string(filter.Or)},
			"comparison": cmp,
		},
		"maxDepth": filter.MaxDepth,
	}
}

func objectMeta(o *schema.ObjectDef) map[string]any {
	fields := make([]any, len(o.Fields))
	for i := range o.Fields {
		fields[i] = fieldMeta(&o.Fields[i])
	}

	joins := make([]any, len(o.Joins))
	for i, j := range o.Joins {
		joins[i] = map[string]any{
			"name":  j.Name,
			"title": j.Title,
		}
	}

	return map[string]any{
		"apiName":     o.APIName,
		"title":       o.Title,
		"pluralTitle": o.PluralTitle,
		"fields":      fields,
		"joins":       joins,
	}
}

func fieldMeta(f *schema.FieldDef) map[string]any {
	m := map[string]any{
		"apiName":   f.APIName,
		"title":     f.Title,
		"type":      string(f.Type),
		"operators": fieldOperators(f),
	}
	if f.Join != "" {
		m["join"] = f.Join
	}
	if len(f.Aliases) > 0 {
		m["aliases"] = stringList(f.Aliases)
	}
	return m
}

// fieldOperators lists the comparison operators a field accepts: LIKE and
// NOT LIKE only apply to text.
func fieldOperators(f *schema.FieldDef) []any {
	var ops []any
	for _, op := range filter.ComparisonOperators() {
		if (op == filter.Like || op == filter.NotLike) && f.Type != schema.FieldText {
			continue
		}
		ops = append(ops, string(op))
	}
	return ops
}
