package schema

import (
	"fmt"
	"strconv"
	"time"

	"github.com/atlekbai/casewatch/internal/filter"
)

var dateLayouts = []string{time.DateOnly, time.DateTime, time.RFC3339}

// Resolve checks every leaf of g against obj and returns a copy with field
// names canonicalised and operands coerced to the field type: numbers
// compared with text fields become strings, numeric strings compared with
// number fields become numbers. LIKE is only accepted on text fields.
func Resolve(obj *ObjectDef, g *filter.ConditionGroup) (*filter.ConditionGroup, error) {
	return filter.MapConditions(g, func(path string, c *filter.Condition) (*filter.Condition, error) {
		f, ok := obj.Field(c.Field)
		if !ok {
			return nil, fmt.Errorf("%s: %w %q on %s", path, ErrUnknownField, c.Field, obj.APIName)
		}
		v, err := coerce(f, c.ComparisonOperator, c.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out := *c
		out.Field = f.APIName
		out.Value = v
		return &out, nil
	})
}

func coerce(f *FieldDef, op filter.ComparisonOperator, v filter.Value) (filter.Value, error) {
	like := op == filter.Like || op == filter.NotLike
	switch f.Type {
	case FieldText:
		if _, ok := v.Any().(string); !ok {
			return filter.StringValue(v.String()), nil
		}
		return v, nil

	case FieldNumber:
		if like {
			return v, fmt.Errorf("%w: %s cannot be applied to number field %s", ErrTypeMismatch, op, f.APIName)
		}
		s, ok := v.Any().(string)
		if !ok {
			return v, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return filter.IntValue(n), nil
		}
		if x, err := strconv.ParseFloat(s, 64); err == nil {
			return filter.FloatValue(x), nil
		}
		return v, fmt.Errorf("%w: %q is not a number (field %s)", ErrTypeMismatch, s, f.APIName)

	case FieldDate:
		if like {
			return v, fmt.Errorf("%w: %s cannot be applied to date field %s", ErrTypeMismatch, op, f.APIName)
		}
		s, ok := v.Any().(string)
		if !ok {
			return v, fmt.Errorf("%w: field %s expects a date string", ErrTypeMismatch, f.APIName)
		}
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return v, nil
			}
		}
		return v, fmt.Errorf("%w: %q is not a date (field %s)", ErrTypeMismatch, s, f.APIName)
	}
	return v, nil
}

// ColumnFor returns the quoted column a field name refers to.
func (o *ObjectDef) ColumnFor(name string) (string, error) {
	f, ok := o.Field(name)
	if !ok {
		return "", fmt.Errorf("%w %q on %s", ErrUnknownField, name, o.APIName)
	}
	return f.QualifiedColumn(), nil
}
