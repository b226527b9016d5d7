package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wireNode is the JSON shape shared by conditions and groups. Without an
// explicit kind, a node carrying "conditions" is a group.
type wireNode struct {
	Kind               string          `json:"kind,omitempty"`
	LogicOperator      string          `json:"logicOperator,omitempty"`
	Field              *string         `json:"field,omitempty"`
	ComparisonOperator *string         `json:"comparisonOperator,omitempty"`
	Value              json.RawMessage `json:"value,omitempty"`
	Conditions         json.RawMessage `json:"conditions,omitempty"`
}

// UnmarshalJSON decodes a group and every node below it, rejecting
// malformed nodes and unknown operators as it goes.
func (g *ConditionGroup) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := decodeWire(data, "", &w); err != nil {
		return err
	}
	if w.Kind != "" && NodeKind(w.Kind) != KindGroup {
		return malformed("", "root must be a group, got kind %q", w.Kind)
	}
	out, err := decodeGroup(&w, "", 1)
	if err != nil {
		return err
	}
	*g = *out
	return nil
}

// UnmarshalJSON decodes a single leaf.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := decodeWire(data, "", &w); err != nil {
		return err
	}
	out, err := decodeCondition(&w, "")
	if err != nil {
		return err
	}
	*c = *out
	return nil
}

// DecodeNode decodes a node of either kind.
func DecodeNode(data []byte) (Node, error) {
	return decodeNode(data, "", 1)
}

func decodeWire(data []byte, path string, w *wireNode) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return malformed(path, "node must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, w); err != nil {
		return malformed(path, "%v", err)
	}
	if w.hasLeafKeys() && w.Conditions != nil {
		return malformed(path, "node has both field and conditions")
	}
	return nil
}

func (w *wireNode) hasLeafKeys() bool {
	return w.Field != nil || w.ComparisonOperator != nil || w.Value != nil
}

func decodeNode(data []byte, path string, depth int) (Node, error) {
	var w wireNode
	if err := decodeWire(data, path, &w); err != nil {
		return nil, err
	}
	switch NodeKind(w.Kind) {
	case KindGroup:
		return decodeGroup(&w, path, depth)
	case KindCondition:
		return decodeCondition(&w, path)
	case "":
		if w.Conditions != nil {
			return decodeGroup(&w, path, depth)
		}
		return decodeCondition(&w, path)
	default:
		return nil, malformed(path, "unknown node kind %q", w.Kind)
	}
}

func decodeGroup(w *wireNode, path string, depth int) (*ConditionGroup, error) {
	if depth > MaxDepth {
		return nil, malformed(path, "nesting deeper than %d levels", MaxDepth)
	}
	if w.hasLeafKeys() {
		return nil, malformed(path, "group has field, comparisonOperator or value")
	}
	op, err := ParseLogicOperator(w.LogicOperator)
	if err != nil {
		return nil, atPath(path, err)
	}
	g := &ConditionGroup{LogicOperator: op, Conditions: []Node{}}
	if w.Conditions == nil {
		return g, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(w.Conditions, &raw); err != nil || raw == nil {
		return nil, malformed(path, "conditions must be an array")
	}
	for i, r := range raw {
		child, err := decodeNode(r, childPath(path, i), depth+1)
		if err != nil {
			return nil, err
		}
		g.Conditions = append(g.Conditions, child)
	}
	return g, nil
}

func decodeCondition(w *wireNode, path string) (*Condition, error) {
	op, err := ParseLogicOperator(w.LogicOperator)
	if err != nil {
		return nil, atPath(path, err)
	}
	if w.Field == nil || *w.Field == "" {
		return nil, malformed(path, "missing field")
	}
	if w.ComparisonOperator == nil || *w.ComparisonOperator == "" {
		return nil, malformed(path, "missing comparisonOperator")
	}
	cmp, err := ParseComparisonOperator(*w.ComparisonOperator)
	if err != nil {
		return nil, atPath(path, err)
	}
	val, err := decodeValue(w.Value, path)
	if err != nil {
		return nil, err
	}
	return &Condition{
		LogicOperator:      op,
		Field:              *w.Field,
		ComparisonOperator: cmp,
		Value:              val,
	}, nil
}

func decodeValue(raw json.RawMessage, path string) (Value, error) {
	if raw == nil {
		return Value{}, malformed(path, "missing value")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, malformed(path, "value: %v", err)
	}
	switch x := v.(type) {
	case string:
		return StringValue(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return IntValue(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, malformed(path, "value %s out of range", x)
		}
		return FloatValue(f), nil
	default:
		return Value{}, malformed(path, "value must be a string or a number, got %s", jsonType(v))
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// MarshalJSON always emits the kind discriminant and the conditions array,
// even when empty.
func (g *ConditionGroup) MarshalJSON() ([]byte, error) {
	children := make([]json.RawMessage, 0, g.Len())
	for _, c := range g.Conditions {
		b, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		children = append(children, b)
	}
	return json.Marshal(struct {
		Kind          NodeKind          `json:"kind"`
		LogicOperator LogicOperator     `json:"logicOperator,omitempty"`
		Conditions    []json.RawMessage `json:"conditions"`
	}{KindGroup, g.LogicOperator, children})
}

// MarshalJSON writes floats with a decimal point so they decode back as
// floats.
func (c *Condition) MarshalJSON() ([]byte, error) {
	var v any = c.Value.Any()
	if f, ok := v.(float64); ok {
		v = json.Number(formatFloat(f))
	}
	return json.Marshal(struct {
		Kind               NodeKind           `json:"kind"`
		LogicOperator      LogicOperator      `json:"logicOperator,omitempty"`
		Field              string             `json:"field"`
		ComparisonOperator ComparisonOperator `json:"comparisonOperator"`
		Value              any                `json:"value"`
	}{KindCondition, c.LogicOperator, c.Field, c.ComparisonOperator, v})
}
