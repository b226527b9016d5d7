package filter

import "fmt"

// MaxDepth bounds group nesting. The editor never gets near it; it exists
// so a hostile payload cannot drive the recursive walkers arbitrarily deep.
const MaxDepth = 32

// Validate checks g before compilation. It fails on the first problem with a
// *PathError wrapping ErrMalformedTree or ErrUnknownOperator. The logic
// operator of a first child is not checked beyond being well-formed, since
// compilation ignores it.
func Validate(g *ConditionGroup) error {
	if g == nil {
		return malformed("", "nil group")
	}
	return validateGroup(g, "", 1)
}

func validateGroup(g *ConditionGroup, path string, depth int) error {
	if depth > MaxDepth {
		return malformed(path, "nesting deeper than %d levels", MaxDepth)
	}
	if err := validateLogic(g.LogicOperator, path); err != nil {
		return err
	}
	for i, child := range g.Conditions {
		p := childPath(path, i)
		switch n := child.(type) {
		case *Condition:
			if n == nil {
				return malformed(p, "nil condition")
			}
			if err := validateCondition(n, p); err != nil {
				return err
			}
		case *ConditionGroup:
			if n == nil {
				return malformed(p, "nil group")
			}
			if err := validateGroup(n, p, depth+1); err != nil {
				return err
			}
		default:
			return malformed(p, "nil node")
		}
	}
	return nil
}

func validateCondition(c *Condition, path string) error {
	if err := validateLogic(c.LogicOperator, path); err != nil {
		return err
	}
	if c.Field == "" {
		return malformed(path, "missing field")
	}
	if c.ComparisonOperator == "" {
		return malformed(path, "missing comparisonOperator")
	}
	if !c.ComparisonOperator.Valid() {
		return atPath(path, fmt.Errorf("%w: comparison operator %q", ErrUnknownOperator, string(c.ComparisonOperator)))
	}
	if !c.Value.IsSet() {
		return malformed(path, "missing value")
	}
	return nil
}

func validateLogic(op LogicOperator, path string) error {
	if op != "" && !op.Valid() {
		return atPath(path, fmt.Errorf("%w: logic operator %q", ErrUnknownOperator, string(op)))
	}
	return nil
}
