package filter

// GroupRole is a rendering hint for the editor. It has no effect on
// compilation: both roles compile to a parenthesized sub-predicate.
type GroupRole string

const (
	// RoleWhere is the root group, labelled WHERE once.
	RoleWhere GroupRole = "WHERE"
	// RoleParenthesis is a nested group rendered as ( ... ).
	RoleParenthesis GroupRole = "PARENTHESIS"
)

// RoleAt returns the role of a group nested at the given level; the root is
// level 0.
func RoleAt(level int) GroupRole {
	if level == 0 {
		return RoleWhere
	}
	return RoleParenthesis
}

// CanAddChild reports whether the editor offers add-child affordances on g.
// A WHERE root holds exactly one top-level predicate, so it accepts a child
// only while empty.
func CanAddChild(g *ConditionGroup, role GroupRole) bool {
	if role == RoleWhere {
		return g.Len() == 0
	}
	return true
}

// IsComplete reports whether g is complete for rendering. A parenthesis
// group exists to group two or more terms.
func IsComplete(g *ConditionGroup, role GroupRole) bool {
	switch role {
	case RoleWhere:
		return g.Len() <= 1
	case RoleParenthesis:
		return g.Len() >= 2
	default:
		return true
	}
}

// NewSeed returns the tree an editing session starts from.
func NewSeed() *ConditionGroup {
	return &ConditionGroup{
		Conditions: []Node{
			&Condition{Field: "localization.continent", ComparisonOperator: Like, Value: StringValue("Europe")},
		},
	}
}

// Depth returns the nesting depth of n as the editor draws it. A leaf and
// an empty group both have depth 1; a nested group counts one more than its
// own depth.
func Depth(n Node) int {
	g, ok := n.(*ConditionGroup)
	if !ok || g == nil {
		return 1
	}
	deepest := 1
	for _, c := range g.Conditions {
		d := 1
		if sub, ok := c.(*ConditionGroup); ok && sub != nil {
			d = 1 + Depth(sub)
		}
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}
