package filter

// Tree operations are copy-on-write: every call returns a new value and
// leaves its arguments untouched. Unchanged siblings are shared between the
// old and the new tree, which is safe because nothing mutates a node after
// construction. Nodes inserted by the caller are deep-copied so the result
// owns them exclusively.

// NewGroup returns a group holding deep copies of children.
func NewGroup(op LogicOperator, children ...Node) *ConditionGroup {
	g := &ConditionGroup{LogicOperator: op, Conditions: make([]Node, 0, len(children))}
	for _, c := range children {
		if c != nil {
			g.Conditions = append(g.Conditions, Clone(c))
		}
	}
	return g
}

// AddCondition returns g with c appended.
func AddCondition(g *ConditionGroup, c *Condition) *ConditionGroup {
	if c == nil {
		return g
	}
	return appendChild(g, c)
}

// AddGroup returns g with sub appended as a nested group.
func AddGroup(g *ConditionGroup, sub *ConditionGroup) *ConditionGroup {
	if sub == nil {
		return g
	}
	return appendChild(g, sub)
}

func appendChild(g *ConditionGroup, child Node) *ConditionGroup {
	out := &ConditionGroup{Conditions: make([]Node, g.Len(), g.Len()+1)}
	if g != nil {
		out.LogicOperator = g.LogicOperator
		copy(out.Conditions, g.Conditions)
	}
	out.Conditions = append(out.Conditions, Clone(child))
	return out
}

// ReplaceAt returns g with the child at index i replaced by child. An index
// out of range, or a nil child, returns g unchanged.
func ReplaceAt(g *ConditionGroup, i int, child Node) *ConditionGroup {
	if child == nil || i < 0 || i >= g.Len() {
		return g
	}
	out := &ConditionGroup{LogicOperator: g.LogicOperator, Conditions: make([]Node, len(g.Conditions))}
	copy(out.Conditions, g.Conditions)
	out.Conditions[i] = Clone(child)
	return out
}

// RemoveAt returns g without the child at index i; later children shift
// down by one. An index out of range returns g unchanged.
func RemoveAt(g *ConditionGroup, i int) *ConditionGroup {
	if i < 0 || i >= g.Len() {
		return g
	}
	out := &ConditionGroup{LogicOperator: g.LogicOperator, Conditions: make([]Node, 0, len(g.Conditions)-1)}
	out.Conditions = append(out.Conditions, g.Conditions[:i]...)
	out.Conditions = append(out.Conditions, g.Conditions[i+1:]...)
	return out
}

// SetLogicOperator returns a shallow copy of n with its logic operator
// replaced. Children of a group are shared, not copied.
func SetLogicOperator(n Node, op LogicOperator) Node {
	switch n := n.(type) {
	case *Condition:
		c := *n
		c.LogicOperator = op
		return &c
	case *ConditionGroup:
		g := &ConditionGroup{LogicOperator: op, Conditions: make([]Node, len(n.Conditions))}
		copy(g.Conditions, n.Conditions)
		return g
	default:
		return n
	}
}

// Clone returns a deep copy of n.
func Clone(n Node) Node {
	switch n := n.(type) {
	case *Condition:
		c := *n
		return &c
	case *ConditionGroup:
		return cloneGroup(n)
	default:
		return n
	}
}

func cloneGroup(g *ConditionGroup) *ConditionGroup {
	if g == nil {
		return nil
	}
	out := &ConditionGroup{LogicOperator: g.LogicOperator, Conditions: make([]Node, len(g.Conditions))}
	for i, c := range g.Conditions {
		out.Conditions[i] = Clone(c)
	}
	return out
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Node) bool {
	switch a := a.(type) {
	case *Condition:
		b, ok := b.(*Condition)
		if !ok || a == nil || b == nil {
			return ok && a == b
		}
		return *a == *b
	case *ConditionGroup:
		b, ok := b.(*ConditionGroup)
		if !ok || a == nil || b == nil {
			return ok && a == b
		}
		if a.LogicOperator != b.LogicOperator || len(a.Conditions) != len(b.Conditions) {
			return false
		}
		for i := range a.Conditions {
			if !Equal(a.Conditions[i], b.Conditions[i]) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}

// At returns the node addressed by path, each element indexing into the
// conditions of the group reached so far. An empty path addresses root.
func At(root *ConditionGroup, path []int) (Node, bool) {
	var cur Node = root
	for _, i := range path {
		g, ok := cur.(*ConditionGroup)
		if !ok || i < 0 || i >= g.Len() {
			return nil, false
		}
		cur = g.Conditions[i]
	}
	return cur, cur != nil
}

// UpdateAt rebuilds every group along path and replaces the addressed node
// with fn's result. A nil result removes the node. Invalid paths return
// root unchanged, as does a non-group result for the root itself.
func UpdateAt(root *ConditionGroup, path []int, fn func(Node) Node) *ConditionGroup {
	if root == nil {
		return nil
	}
	if len(path) == 0 {
		if g, ok := fn(root).(*ConditionGroup); ok && g != nil {
			return g
		}
		return root
	}

	i := path[0]
	if i < 0 || i >= root.Len() {
		return root
	}
	child := root.Conditions[i]

	if len(path) == 1 {
		next := fn(child)
		if next == nil {
			return RemoveAt(root, i)
		}
		return ReplaceAt(root, i, next)
	}

	sub, ok := child.(*ConditionGroup)
	if !ok {
		return root
	}
	updated := UpdateAt(sub, path[1:], fn)
	if updated == sub {
		return root
	}
	return ReplaceAt(root, i, updated)
}

// MapConditions rebuilds g with every leaf replaced by fn's result. The
// path passed to fn locates the leaf for error messages.
func MapConditions(g *ConditionGroup, fn func(path string, c *Condition) (*Condition, error)) (*ConditionGroup, error) {
	return mapGroup(g, "", fn)
}

func mapGroup(g *ConditionGroup, path string, fn func(string, *Condition) (*Condition, error)) (*ConditionGroup, error) {
	if g == nil {
		return nil, nil
	}
	out := &ConditionGroup{LogicOperator: g.LogicOperator, Conditions: make([]Node, len(g.Conditions))}
	for i, child := range g.Conditions {
		p := childPath(path, i)
		switch n := child.(type) {
		case *Condition:
			c, err := fn(p, n)
			if err != nil {
				return nil, err
			}
			out.Conditions[i] = c
		case *ConditionGroup:
			sub, err := mapGroup(n, p, fn)
			if err != nil {
				return nil, err
			}
			out.Conditions[i] = sub
		default:
			return nil, malformed(p, "nil node")
		}
	}
	return out, nil
}

// Normalize returns the canonical form of g: the root and every first
// emitted child lose their logic operator, later children without one get
// AND, and empty nested groups are dropped. Compiling g and Normalize(g)
// binds the same values in the same order; only the parameter names may
// differ, since they follow child indices.
func Normalize(g *ConditionGroup) *ConditionGroup {
	if g == nil {
		return &ConditionGroup{}
	}
	return normalizeGroup(g, "")
}

func normalizeGroup(g *ConditionGroup, op LogicOperator) *ConditionGroup {
	out := &ConditionGroup{LogicOperator: op}
	for _, child := range g.Conditions {
		if child == nil {
			continue
		}
		var next LogicOperator
		if len(out.Conditions) > 0 {
			next = child.Logic()
			if next == "" {
				next = And
			}
		}
		switch n := child.(type) {
		case *Condition:
			c := *n
			c.LogicOperator = next
			out.Conditions = append(out.Conditions, &c)
		case *ConditionGroup:
			sub := normalizeGroup(n, next)
			if len(sub.Conditions) == 0 {
				continue
			}
			out.Conditions = append(out.Conditions, sub)
		}
	}
	return out
}
