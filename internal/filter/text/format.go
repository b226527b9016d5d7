package text

import (
	"strconv"
	"strings"

	"github.com/atlekbai/casewatch/internal/filter"
)

// Format renders g in the textual syntax. It writes the normal form of g:
// the first fragment of each group has no operator, later ones default to
// AND, and empty nested groups are omitted. Parse(Format(g)) equals
// filter.Normalize(g) for any valid g.
func Format(g *filter.ConditionGroup) string {
	var sb strings.Builder
	writeGroup(&sb, g)
	return sb.String()
}

func writeGroup(sb *strings.Builder, g *filter.ConditionGroup) bool {
	wrote := false
	for _, child := range g.Conditions {
		var frag strings.Builder
		switch n := child.(type) {
		case *filter.Condition:
			writeCondition(&frag, n)
		case *filter.ConditionGroup:
			frag.WriteByte('(')
			if !writeGroup(&frag, n) {
				continue
			}
			frag.WriteByte(')')
		default:
			continue
		}
		if wrote {
			op := child.Logic()
			if op == "" {
				op = filter.And
			}
			sb.WriteByte(' ')
			sb.WriteString(string(op))
			sb.WriteByte(' ')
		}
		sb.WriteString(frag.String())
		wrote = true
	}
	return wrote
}

func writeCondition(sb *strings.Builder, c *filter.Condition) {
	sb.WriteString(c.Field)
	sb.WriteByte(' ')
	sb.WriteString(string(c.ComparisonOperator))
	sb.WriteByte(' ')
	switch v := c.Value.Any().(type) {
	case string:
		sb.WriteString(quote(v))
	case int64:
		sb.WriteString(strconv.FormatInt(v, 10))
	default:
		sb.WriteString(c.Value.String())
	}
}

func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}
