package filter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func mustDecode(t *testing.T, input string) *ConditionGroup {
	t.Helper()
	var g ConditionGroup
	if err := json.Unmarshal([]byte(input), &g); err != nil {
		t.Fatalf("Unmarshal(%s) failed: %v", input, err)
	}
	return &g
}

func expectDecodeError(t *testing.T, input string, target error, wantSubstr string) {
	t.Helper()
	var g ConditionGroup
	err := json.Unmarshal([]byte(input), &g)
	if err == nil {
		t.Fatalf("Unmarshal(%s): expected error, got nil", input)
	}
	if !errors.Is(err, target) {
		t.Fatalf("Unmarshal(%s): expected %v, got %v", input, target, err)
	}
	if !strings.Contains(err.Error(), wantSubstr) {
		t.Fatalf("Unmarshal(%s): expected error containing %q, got %q", input, wantSubstr, err.Error())
	}
}

func TestDecodeFilterPayload(t *testing.T) {
	g := mustDecode(t, `{
		"conditions": [
			{"field": "disease.name", "comparisonOperator": "=", "value": "Monkeypox"},
			{"logicOperator": "OR", "conditions": [
				{"field": "disease.name", "comparisonOperator": "=", "value": "Coronavirus"},
				{"logicOperator": "AND", "field": "totalDeath", "comparisonOperator": ">=", "value": 10},
				{"logicOperator": "and", "field": "localizationData.vaccinationRate", "comparisonOperator": "not like", "value": 0.5}
			]}
		]
	}`)

	want := group("",
		leaf("", "disease.name", Eq, StringValue("Monkeypox")),
		group(Or,
			leaf("", "disease.name", Eq, StringValue("Coronavirus")),
			leaf(And, "totalDeath", Gte, IntValue(10)),
			leaf(And, "localizationData.vaccinationRate", NotLike, FloatValue(0.5)),
		),
	)
	if !Equal(g, want) {
		t.Fatalf("decoded tree differs: %+v", g)
	}
}

func TestDecodeExplicitKind(t *testing.T) {
	g := mustDecode(t, `{"kind":"group","conditions":[
		{"kind":"group"},
		{"kind":"condition","field":"a","comparisonOperator":"<","value":"1"}
	]}`)
	if g.Len() != 2 {
		t.Fatalf("expected 2 children, got %d", g.Len())
	}
	if sub, ok := g.Conditions[0].(*ConditionGroup); !ok || sub.Len() != 0 {
		t.Fatalf("expected empty group, got %+v", g.Conditions[0])
	}
	if c, ok := g.Conditions[1].(*Condition); !ok || c.Value.Any() != "1" {
		t.Fatalf("expected string condition, got %+v", g.Conditions[1])
	}
}

func TestDecodeEmptyRoot(t *testing.T) {
	for _, input := range []string{`{}`, `{"conditions":[]}`} {
		g := mustDecode(t, input)
		if g.Len() != 0 || g.Conditions == nil {
			t.Fatalf("%s: expected empty non-nil conditions, got %+v", input, g)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target error
		substr string
	}{
		{"not an object", `[]`, ErrMalformedTree, "JSON object"},
		{"conditions null", `{"conditions":null}`, ErrMalformedTree, "conditions must be an array"},
		{"conditions object", `{"conditions":{}}`, ErrMalformedTree, "conditions must be an array"},
		{"missing field", `{"conditions":[{"comparisonOperator":"=","value":1}]}`, ErrMalformedTree, "conditions[0]: "},
		{"missing operator", `{"conditions":[{"field":"a","value":1}]}`, ErrMalformedTree, "missing comparisonOperator"},
		{"missing value", `{"conditions":[{"field":"a","comparisonOperator":"="}]}`, ErrMalformedTree, "missing value"},
		{"null value", `{"conditions":[{"field":"a","comparisonOperator":"=","value":null}]}`, ErrMalformedTree, "null"},
		{"bool value", `{"conditions":[{"field":"a","comparisonOperator":"=","value":true}]}`, ErrMalformedTree, "boolean"},
		{"array value", `{"conditions":[{"field":"a","comparisonOperator":"=","value":[1]}]}`, ErrMalformedTree, "array"},
		{"unknown kind", `{"conditions":[{"kind":"leaf"}]}`, ErrMalformedTree, "unknown node kind"},
		{"root kind", `{"kind":"condition"}`, ErrMalformedTree, "root must be a group"},
		{"leaf with conditions", `{"conditions":[{"field":"disease.name","comparisonOperator":"=","value":"X","conditions":[]}]}`, ErrMalformedTree, "node has both field and conditions"},
		{"value with conditions", `{"conditions":[{"value":1,"conditions":[{"field":"a","comparisonOperator":"=","value":1}]}]}`, ErrMalformedTree, "conditions[0]: malformed filter tree: node has both"},
		{"condition kind with conditions", `{"conditions":[{"kind":"condition","field":"a","comparisonOperator":"=","value":1,"conditions":[]}]}`, ErrMalformedTree, "node has both field and conditions"},
		{"group kind with field", `{"conditions":[{"kind":"group","field":"a","comparisonOperator":"=","value":1}]}`, ErrMalformedTree, "group has field"},
		{"root with field", `{"field":"a","comparisonOperator":"=","value":1}`, ErrMalformedTree, "group has field"},
		{"drop operator", `{"conditions":[{"field":"a","comparisonOperator":"DROP","value":1}]}`, ErrUnknownOperator, "DROP"},
		{"xor operator", `{"conditions":[{"conditions":[{"logicOperator":"XOR","field":"a","comparisonOperator":"=","value":1}]}]}`, ErrUnknownOperator, "conditions[0].conditions[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectDecodeError(t, tt.input, tt.target, tt.substr)
		})
	}
}

func TestDecodeRejectsDeepNesting(t *testing.T) {
	input := strings.Repeat(`{"conditions":[`, MaxDepth+1) + strings.Repeat(`]}`, MaxDepth+1)
	expectDecodeError(t, input, ErrMalformedTree, "nesting deeper")

	ok := strings.Repeat(`{"conditions":[`, MaxDepth) + strings.Repeat(`]}`, MaxDepth)
	mustDecode(t, ok)
}

func TestMarshalRoundTrip(t *testing.T) {
	g := group("",
		leaf("", "disease.name", Eq, StringValue("Monkeypox")),
		group(Or,
			leaf("", "totalConfirmed", Lte, IntValue(42)),
			leaf(Or, "vaccinationRate", Gt, FloatValue(3)),
		),
		group(And),
	)
	b, err := json.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	back := mustDecode(t, string(b))
	if !Equal(back, g) {
		t.Fatalf("round trip changed the tree:\n%s", b)
	}
	if !strings.Contains(string(b), `"value":3.0`) {
		t.Fatalf("unexpected float encoding: %s", b)
	}
}

func TestMarshalEmitsKind(t *testing.T) {
	b, err := json.Marshal(group("", leaf("", "a", Eq, IntValue(1))))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"group","conditions":[{"kind":"condition","field":"a","comparisonOperator":"=","value":1}]}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}
}

func TestDecodeNode(t *testing.T) {
	n, err := DecodeNode([]byte(`{"field":"a","comparisonOperator":"like","value":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	c, ok := n.(*Condition)
	if !ok || c.ComparisonOperator != Like {
		t.Fatalf("expected LIKE condition, got %+v", n)
	}
}
