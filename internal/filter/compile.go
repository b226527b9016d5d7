package filter

import (
	"fmt"
	"strings"
)

// Predicate is a compiled filter: a SQL boolean expression with named
// parameters (":key") and the values to bind to them. An empty Expression
// means "no filter".
type Predicate struct {
	Expression string
	Parameters map[string]any

	terms []term
}

// Empty reports whether the predicate filters nothing.
func (p *Predicate) Empty() bool {
	return p == nil || len(p.terms) == 0
}

// Keys returns the parameter names in the order they appear in Expression.
func (p *Predicate) Keys() []string {
	if p == nil {
		return nil
	}
	var keys []string
	for _, t := range p.terms {
		if t.kind == termCmp {
			keys = append(keys, t.bind.key)
		}
	}
	return keys
}

// Fields returns the distinct field names referenced by the predicate.
func (p *Predicate) Fields() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]bool)
	var fields []string
	for _, t := range p.terms {
		if t.kind == termCmp && !seen[t.field] {
			seen[t.field] = true
			fields = append(fields, t.field)
		}
	}
	return fields
}

// ColumnRef is how one field is rendered in positional SQL: the expression
// compared and the placeholder it is compared with. An empty Placeholder
// means "?".
type ColumnRef struct {
	Expr        string
	Placeholder string
}

// Positional renders the predicate with "?" placeholders and returns the
// arguments in placeholder order. column maps a field name to its SQL
// rendering; a nil column uses the field name verbatim.
func (p *Predicate) Positional(column func(field string) (ColumnRef, error)) (string, []any, error) {
	if p.Empty() {
		return "", nil, nil
	}
	args := make([]any, 0, len(p.Parameters))
	sql, err := render(p.terms, func(t term) (string, error) {
		ref := ColumnRef{Expr: t.field}
		if column != nil {
			var err error
			if ref, err = column(t.field); err != nil {
				return "", err
			}
		}
		if ref.Placeholder == "" {
			ref.Placeholder = "?"
		}
		args = append(args, t.bind.value)
		return ref.Expr + " " + string(t.op) + " " + ref.Placeholder, nil
	})
	if err != nil {
		return "", nil, err
	}
	return sql, args, nil
}

type termKind int

const (
	termJoin  termKind = iota // AND / OR
	termOpen                  // (
	termClose                 // )
	termCmp                   // field op :key
)

type term struct {
	kind  termKind
	logic LogicOperator
	field string
	op    ComparisonOperator
	bind  *binding
}

// binding is shared between the term that references it and every scope
// that claims it, so a rename in an outer scope reaches the term.
type binding struct {
	key   string
	value any
}

// scope is the set of parameter names claimed inside one group.
type scope map[string]struct{}

// claim registers b in s, re-keying it with a numeric suffix until the name
// is free.
func (s scope) claim(b *binding) {
	base := b.key
	for n := 1; ; n++ {
		if _, taken := s[b.key]; !taken {
			break
		}
		b.key = fmt.Sprintf("%s_%d", base, n)
	}
	s[b.key] = struct{}{}
}

// Compile validates g and translates it into a Predicate.
//
// Leaves compile to "field op :field_i" where i is the leaf's index in its
// own group; nested groups compile to "( ... )". Every fragment after the
// first one emitted in a group is prefixed with its own logic operator (AND
// when missing). Empty nested groups emit nothing. Parameter names are
// claimed group by group on the way back up and re-keyed on collision, so
// they are unique across the whole tree.
func Compile(g *ConditionGroup) (*Predicate, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}

	terms, binds := compileGroup(g)
	if err := checkUnique(binds); err != nil {
		return nil, err
	}

	pred := &Predicate{
		Parameters: make(map[string]any, len(binds)),
		terms:      terms,
	}
	for _, b := range binds {
		pred.Parameters[b.key] = b.value
	}
	pred.Expression, _ = render(terms, func(t term) (string, error) {
		return t.field + " " + string(t.op) + " :" + t.bind.key, nil
	})
	return pred, nil
}

func compileGroup(g *ConditionGroup) ([]term, []*binding) {
	var (
		terms []term
		binds []*binding
		names = make(scope)
	)

	join := func(op LogicOperator) {
		if len(terms) == 0 {
			return
		}
		if op == "" {
			op = And
		}
		terms = append(terms, term{kind: termJoin, logic: op})
	}

	for i, child := range g.Conditions {
		switch n := child.(type) {
		case *Condition:
			b := &binding{key: fmt.Sprintf("%s_%d", n.Field, i), value: n.Value.Any()}
			names.claim(b)
			binds = append(binds, b)
			join(n.LogicOperator)
			terms = append(terms, term{kind: termCmp, field: n.Field, op: n.ComparisonOperator, bind: b})

		case *ConditionGroup:
			subTerms, subBinds := compileGroup(n)
			if len(subTerms) == 0 {
				continue
			}
			for _, b := range subBinds {
				names.claim(b)
			}
			binds = append(binds, subBinds...)
			join(n.LogicOperator)
			terms = append(terms, term{kind: termOpen})
			terms = append(terms, subTerms...)
			terms = append(terms, term{kind: termClose})
		}
	}
	return terms, binds
}

func checkUnique(binds []*binding) error {
	seen := make(map[string]bool, len(binds))
	for _, b := range binds {
		if seen[b.key] {
			return fmt.Errorf("%w: %q bound twice", ErrParameterCollision, b.key)
		}
		seen[b.key] = true
	}
	return nil
}

// render joins terms with single spaces, without padding inside
// parentheses.
func render(terms []term, cmp func(term) (string, error)) (string, error) {
	var sb strings.Builder
	prevOpen := true
	for _, t := range terms {
		if t.kind != termClose && !prevOpen {
			sb.WriteByte(' ')
		}
		prevOpen = false
		switch t.kind {
		case termJoin:
			sb.WriteString(string(t.logic))
		case termOpen:
			sb.WriteByte('(')
			prevOpen = true
		case termClose:
			sb.WriteByte(')')
		case termCmp:
			s, err := cmp(t)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		}
	}
	return sb.String(), nil
}
