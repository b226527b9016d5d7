package filter

import (
	"math/rand/v2"
	"testing"
)

func sampleTree() *ConditionGroup {
	return group("",
		leaf("", "disease.name", Eq, StringValue("Monkeypox")),
		group(Or,
			leaf("", "localization.country", Like, StringValue("Po%")),
			leaf(And, "totalDeath", Gt, IntValue(100)),
		),
	)
}

func TestAddConditionLeavesInputUntouched(t *testing.T) {
	g := sampleTree()
	before := Clone(g)

	c := leaf(And, "date", Gte, StringValue("2022-05-01"))
	out := AddCondition(g, c)

	if !Equal(g, before) {
		t.Fatal("input tree was modified")
	}
	if out.Len() != 3 {
		t.Fatalf("expected 3 children, got %d", out.Len())
	}
	if !Equal(out.Conditions[2], c) {
		t.Fatalf("appended child differs: %+v", out.Conditions[2])
	}

	// The result owns its copy of the inserted node.
	c.Field = "changed"
	if out.Conditions[2].(*Condition).Field != "date" {
		t.Fatal("result shares the inserted condition with the caller")
	}
}

func TestAddGroupThenRemoveRoundTrips(t *testing.T) {
	g := sampleTree()
	out := RemoveAt(AddGroup(g, group(Or, leaf("", "x", Eq, IntValue(1)))), g.Len())
	if !Equal(out, g) {
		t.Fatal("add then remove did not restore the tree")
	}
}

func TestAddConditionThenRemoveRoundTrips(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 5))
	for i := 0; i < 300; i++ {
		g := randomTree(r, 3)
		before := Clone(g)
		c := leaf(Or, "disease.name", Like, StringValue("Mon%"))

		out := RemoveAt(AddCondition(g, c), g.Len())
		if !Equal(out, g) {
			t.Fatalf("tree %d: add then remove did not restore the tree", i)
		}
		if !Equal(g, before) {
			t.Fatalf("tree %d: input tree was modified", i)
		}
	}
}

func TestAddToNilGroup(t *testing.T) {
	out := AddCondition(nil, leaf("", "a", Eq, IntValue(1)))
	if out.Len() != 1 {
		t.Fatalf("expected 1 child, got %d", out.Len())
	}
}

func TestReplaceAt(t *testing.T) {
	g := sampleTree()
	repl := leaf("", "disease.name", Neq, StringValue("Flu"))
	out := ReplaceAt(g, 0, repl)

	if !Equal(out.Conditions[0], repl) {
		t.Fatalf("child 0 not replaced: %+v", out.Conditions[0])
	}
	if out.Conditions[1] != g.Conditions[1] {
		t.Fatal("untouched sibling should be shared")
	}
	if g.Conditions[0].(*Condition).Value.Any() != "Monkeypox" {
		t.Fatal("input tree was modified")
	}
}

func TestReplaceAndRemoveOutOfRangeAreNoOps(t *testing.T) {
	g := sampleTree()
	for _, i := range []int{-1, 2, 99} {
		if ReplaceAt(g, i, leaf("", "a", Eq, IntValue(1))) != g {
			t.Errorf("ReplaceAt(%d): expected unchanged tree", i)
		}
		if RemoveAt(g, i) != g {
			t.Errorf("RemoveAt(%d): expected unchanged tree", i)
		}
	}
	if ReplaceAt(g, 0, nil) != g {
		t.Error("ReplaceAt with nil child: expected unchanged tree")
	}
}

func TestRemoveAtShiftsChildren(t *testing.T) {
	g := group("",
		leaf("", "a", Eq, IntValue(1)),
		leaf(Or, "b", Eq, IntValue(2)),
		leaf(And, "c", Eq, IntValue(3)),
	)
	out := RemoveAt(g, 1)
	if out.Len() != 2 {
		t.Fatalf("expected 2 children, got %d", out.Len())
	}
	if out.Conditions[1].(*Condition).Field != "c" {
		t.Fatalf("expected c at index 1, got %+v", out.Conditions[1])
	}
	if g.Len() != 3 {
		t.Fatal("input tree was modified")
	}
}

func TestSetLogicOperator(t *testing.T) {
	c := leaf("", "a", Eq, IntValue(1))
	out := SetLogicOperator(c, Or).(*Condition)
	if out.LogicOperator != Or || c.LogicOperator != "" {
		t.Fatalf("expected copy with OR, got %q (input %q)", out.LogicOperator, c.LogicOperator)
	}

	g := sampleTree()
	og := SetLogicOperator(g, And).(*ConditionGroup)
	if og.LogicOperator != And || g.LogicOperator != "" {
		t.Fatal("group operator not set on a copy")
	}
	if og.Conditions[0] != g.Conditions[0] {
		t.Fatal("children should be shared")
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := sampleTree()
	c := Clone(g).(*ConditionGroup)
	if !Equal(c, g) {
		t.Fatal("clone differs from original")
	}
	c.Conditions[1].(*ConditionGroup).Conditions[0].(*Condition).Field = "mutated"
	if g.Conditions[1].(*ConditionGroup).Conditions[0].(*Condition).Field != "localization.country" {
		t.Fatal("clone shares nested nodes with the original")
	}
}

func TestEqual(t *testing.T) {
	a := sampleTree()
	b := sampleTree()
	if !Equal(a, b) {
		t.Fatal("identical trees not equal")
	}
	b.Conditions[1].(*ConditionGroup).Conditions[1].(*Condition).Value = IntValue(101)
	if Equal(a, b) {
		t.Fatal("trees differing in a nested value reported equal")
	}
	if Equal(leaf("", "a", Eq, IntValue(1)), group("")) {
		t.Fatal("condition equal to group")
	}
	if Equal(leaf("", "a", Eq, IntValue(1)), leaf("", "a", Eq, FloatValue(1))) {
		t.Fatal("int and float operands reported equal")
	}
}

func TestAtAndUpdateAt(t *testing.T) {
	g := sampleTree()

	n, ok := At(g, []int{1, 1})
	if !ok || n.(*Condition).Field != "totalDeath" {
		t.Fatalf("At([1 1]) = %+v, %v", n, ok)
	}
	if _, ok := At(g, []int{0, 0}); ok {
		t.Fatal("At into a leaf should fail")
	}
	if _, ok := At(g, []int{5}); ok {
		t.Fatal("At out of range should fail")
	}

	out := UpdateAt(g, []int{1, 1}, func(n Node) Node {
		c := *n.(*Condition)
		c.Value = IntValue(500)
		return &c
	})
	got, _ := At(out, []int{1, 1})
	if got.(*Condition).Value.Any() != int64(500) {
		t.Fatalf("nested update not applied: %+v", got)
	}
	if out.Conditions[0] != g.Conditions[0] {
		t.Fatal("sibling off the path should be shared")
	}
	orig, _ := At(g, []int{1, 1})
	if orig.(*Condition).Value.Any() != int64(100) {
		t.Fatal("input tree was modified")
	}

	removed := UpdateAt(g, []int{1, 0}, func(Node) Node { return nil })
	if removed.Conditions[1].(*ConditionGroup).Len() != 1 {
		t.Fatal("nil result should remove the node")
	}

	if UpdateAt(g, []int{0, 3}, func(n Node) Node { return n }) != g {
		t.Fatal("invalid path should return the tree unchanged")
	}
}

func TestMapConditions(t *testing.T) {
	g := sampleTree()
	var paths []string
	out, err := MapConditions(g, func(path string, c *Condition) (*Condition, error) {
		paths = append(paths, path)
		cp := *c
		cp.Field = "x." + c.Field
		return &cp, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"conditions[0]", "conditions[1].conditions[0]", "conditions[1].conditions[1]"}
	if len(paths) != len(want) {
		t.Fatalf("expected paths %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("expected paths %v, got %v", want, paths)
		}
	}
	if out.Conditions[0].(*Condition).Field != "x.disease.name" {
		t.Fatalf("leaf not mapped: %+v", out.Conditions[0])
	}
	if g.Conditions[0].(*Condition).Field != "disease.name" {
		t.Fatal("input tree was modified")
	}
}

func TestNormalize(t *testing.T) {
	g := group(Or,
		group(And),
		leaf(Or, "a", Eq, IntValue(1)),
		leaf("", "b", Eq, IntValue(2)),
		group("", leaf(Or, "c", Eq, IntValue(3))),
	)
	want := group("",
		leaf("", "a", Eq, IntValue(1)),
		leaf(And, "b", Eq, IntValue(2)),
		group(And, leaf("", "c", Eq, IntValue(3))),
	)
	if got := Normalize(g); !Equal(got, want) {
		t.Fatalf("unexpected normal form: %+v", got)
	}
}

func TestReplaceAtIsIdempotent(t *testing.T) {
	g := sampleTree()
	repl := group(Or, leaf("", "date", Lt, StringValue("2023-01-01")))
	once := ReplaceAt(g, 1, repl)
	twice := ReplaceAt(once, 1, repl)
	if !Equal(once, twice) {
		t.Fatal("replacing twice differs from replacing once")
	}
}
