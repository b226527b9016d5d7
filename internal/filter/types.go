package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// LogicOperator joins a node to its previous sibling inside a group.
type LogicOperator string

const (
	And LogicOperator = "AND"
	Or  LogicOperator = "OR"
)

// Valid reports whether op is AND or OR. The empty operator is not valid;
// callers that accept "not given" check for it first.
func (op LogicOperator) Valid() bool {
	return op == And || op == Or
}

// ParseLogicOperator accepts "and"/"or" in any case. An empty string parses
// to the empty operator.
func ParseLogicOperator(s string) (LogicOperator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	op := LogicOperator(strings.ToUpper(s))
	if !op.Valid() {
		return "", fmt.Errorf("%w: logic operator %q", ErrUnknownOperator, s)
	}
	return op, nil
}

// ComparisonOperator is the operator of a single field comparison.
type ComparisonOperator string

const (
	Eq      ComparisonOperator = "="
	Neq     ComparisonOperator = "!="
	Gt      ComparisonOperator = ">"
	Lt      ComparisonOperator = "<"
	Gte     ComparisonOperator = ">="
	Lte     ComparisonOperator = "<="
	Like    ComparisonOperator = "LIKE"
	NotLike ComparisonOperator = "NOT LIKE"
)

var comparisonOperators = map[ComparisonOperator]bool{
	Eq: true, Neq: true, Gt: true, Lt: true,
	Gte: true, Lte: true, Like: true, NotLike: true,
}

// ComparisonOperators lists the supported operators in display order.
func ComparisonOperators() []ComparisonOperator {
	return []ComparisonOperator{Eq, Neq, Gt, Lt, Gte, Lte, Like, NotLike}
}

func (op ComparisonOperator) Valid() bool {
	return comparisonOperators[op]
}

// ParseComparisonOperator normalises case and inner whitespace, so
// "not  like" parses to NotLike.
func ParseComparisonOperator(s string) (ComparisonOperator, error) {
	norm := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	op := ComparisonOperator(norm)
	if !op.Valid() {
		return "", fmt.Errorf("%w: comparison operator %q", ErrUnknownOperator, s)
	}
	return op, nil
}

// Value is a scalar comparison operand: a string, an int64 or a float64.
// The zero Value means "not set".
type Value struct {
	v any
}

func StringValue(s string) Value { return Value{v: s} }
func IntValue(n int64) Value     { return Value{v: n} }
func FloatValue(f float64) Value { return Value{v: f} }

// IsSet reports whether the value carries an operand.
func (v Value) IsSet() bool { return v.v != nil }

// Any returns the operand for parameter binding.
func (v Value) Any() any { return v.v }

func (v Value) String() string {
	switch x := v.v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	default:
		return ""
	}
}

// formatFloat keeps a decimal point so the value reads back as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// NodeKind discriminates the two node shapes of a filter tree.
type NodeKind string

const (
	KindCondition NodeKind = "condition"
	KindGroup     NodeKind = "group"
)

// Node is a Condition or a ConditionGroup. Nodes are values: operations in
// this package never modify a node they receive.
type Node interface {
	Kind() NodeKind
	Logic() LogicOperator
	node() // marker method
}

// Condition is a single comparison leaf: field op value.
type Condition struct {
	LogicOperator      LogicOperator
	Field              string
	ComparisonOperator ComparisonOperator
	Value              Value
}

// ConditionGroup is an ordered list of nodes. Each child's LogicOperator
// joins it to the previous child; the group's own LogicOperator joins the
// group to its previous sibling in the parent.
type ConditionGroup struct {
	LogicOperator LogicOperator
	Conditions    []Node
}

// FilterTree is the root group of an editing session.
type FilterTree = ConditionGroup

func (*Condition) Kind() NodeKind      { return KindCondition }
func (*ConditionGroup) Kind() NodeKind { return KindGroup }

func (c *Condition) Logic() LogicOperator      { return c.LogicOperator }
func (g *ConditionGroup) Logic() LogicOperator { return g.LogicOperator }

func (*Condition) node()      {}
func (*ConditionGroup) node() {}

// Len returns the number of direct children; a nil group has none.
func (g *ConditionGroup) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Conditions)
}
