package schema

import (
	"strings"
)

// QuoteIdent quotes a SQL identifier, escaping embedded double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// BaseAlias is the table alias of the object being listed.
const BaseAlias = "_e"

type FieldType string

const (
	FieldText   FieldType = "TEXT"
	FieldNumber FieldType = "NUMBER"
	FieldDate   FieldType = "DATE"
)

// FieldDef is one filterable, sortable column. Fields of joined tables have
// dotted API names ("disease.name") and carry the join name in Join.
type FieldDef struct {
	APIName string
	Title   string
	Type    FieldType
	Join    string // empty for columns of the base table
	Column  string
	Aliases []string // alternative names accepted in filters
}

// IsNumeric returns true if the field type requires numeric operands.
func (f *FieldDef) IsNumeric() bool {
	return f.Type == FieldNumber
}

// TableAlias returns the alias of the table holding the column.
func (f *FieldDef) TableAlias() string {
	if f.Join == "" {
		return BaseAlias
	}
	return f.Join
}

// QualifiedColumn returns the quoted "alias"."column" reference.
func (f *FieldDef) QualifiedColumn() string {
	return QuoteIdent(f.TableAlias()) + "." + QuoteIdent(f.Column)
}

// JoinOn pairs a base-table column with a column of the joined table.
type JoinOn struct {
	Local  string
	Remote string
}

// JoinDef is a LEFT JOIN from the base table. Rows carry the joined columns
// nested under Name.
type JoinDef struct {
	Name  string
	Title string
	Table string
	On    []JoinOn
}

type ObjectDef struct {
	APIName     string
	Title       string
	PluralTitle string
	Table       string
	Fields      []FieldDef
	Joins       []JoinDef

	FieldsByAPIName map[string]*FieldDef
	lookup          map[string]*FieldDef
}

// TableName returns the quoted table name.
func (o *ObjectDef) TableName() string {
	return QuoteIdent(o.Table)
}

// Join returns the join with the given name.
func (o *ObjectDef) Join(name string) *JoinDef {
	for i := range o.Joins {
		if o.Joins[i].Name == name {
			return &o.Joins[i]
		}
	}
	return nil
}

// JoinFields returns the fields read through the named join, in
// declaration order.
func (o *ObjectDef) JoinFields(name string) []*FieldDef {
	var out []*FieldDef
	for i := range o.Fields {
		if o.Fields[i].Join == name {
			out = append(out, &o.Fields[i])
		}
	}
	return out
}

// Field finds a field by API name or alias. Exact API names win; aliases
// and case-insensitive matches are tried next.
func (o *ObjectDef) Field(name string) (*FieldDef, bool) {
	if f, ok := o.FieldsByAPIName[name]; ok {
		return f, true
	}
	f, ok := o.lookup[strings.ToLower(name)]
	return f, ok
}

// index builds the lookup maps. It must run once the Fields slice is final.
func (o *ObjectDef) index() {
	o.FieldsByAPIName = make(map[string]*FieldDef, len(o.Fields))
	o.lookup = make(map[string]*FieldDef, len(o.Fields)*2)
	for i := range o.Fields {
		f := &o.Fields[i]
		o.FieldsByAPIName[f.APIName] = f
		o.lookup[strings.ToLower(f.APIName)] = f
	}
	for i := range o.Fields {
		f := &o.Fields[i]
		for _, a := range f.Aliases {
			if _, taken := o.lookup[strings.ToLower(a)]; !taken {
				o.lookup[strings.ToLower(a)] = f
			}
		}
	}
}
