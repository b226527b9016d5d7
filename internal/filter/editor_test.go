package filter

import "testing"

func TestDepth(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want int
	}{
		{"leaf", leaf("", "a", Eq, IntValue(1)), 1},
		{"empty group", group(""), 1},
		{"flat group", group("", leaf("", "a", Eq, IntValue(1)), leaf("", "b", Eq, IntValue(2))), 1},
		{"one level", group("", group(Or, leaf("", "a", Eq, IntValue(1)))), 2},
		{"uneven", group("",
			group(Or),
			group(And, group(Or, group(And))),
			leaf("", "a", Eq, IntValue(1)),
		), 4},
	}
	for _, tt := range tests {
		if got := Depth(tt.node); got != tt.want {
			t.Errorf("%s: expected depth %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestDepthDoesNotModifyTree(t *testing.T) {
	g := sampleTree()
	before := Clone(g)
	Depth(g)
	Depth(g)
	if !Equal(g, before) {
		t.Fatal("Depth modified the tree")
	}
}

func TestRoles(t *testing.T) {
	if RoleAt(0) != RoleWhere || RoleAt(1) != RoleParenthesis || RoleAt(5) != RoleParenthesis {
		t.Fatal("unexpected role assignment")
	}

	empty := group("")
	one := group("", leaf("", "a", Eq, IntValue(1)))
	two := AddCondition(one, leaf(Or, "b", Eq, IntValue(2)))

	if !CanAddChild(empty, RoleWhere) || CanAddChild(one, RoleWhere) {
		t.Fatal("WHERE should accept a child only while empty")
	}
	if !CanAddChild(two, RoleParenthesis) {
		t.Fatal("PARENTHESIS should always accept children")
	}

	if !IsComplete(empty, RoleWhere) || !IsComplete(one, RoleWhere) || IsComplete(two, RoleWhere) {
		t.Fatal("WHERE is complete with at most one child")
	}
	if IsComplete(one, RoleParenthesis) || !IsComplete(two, RoleParenthesis) {
		t.Fatal("PARENTHESIS is complete with two or more children")
	}
}

func TestSeedCompiles(t *testing.T) {
	p := mustCompile(t, NewSeed())
	if p.Expression != "localization.continent LIKE :localization.continent_0" {
		t.Fatalf("unexpected seed expression: %q", p.Expression)
	}
	expectParams(t, p, map[string]any{"localization.continent_0": "Europe"})
}
