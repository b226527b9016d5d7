package query

import (
	"strings"

	"github.com/atlekbai/casewatch/internal/schema"
)

// QI is shorthand for schema.QuoteIdent.
func QI(name string) string { return schema.QuoteIdent(name) }

// QuoteLit returns a single-quoted SQL string literal with escaping.
func QuoteLit(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// jsonKey returns the key a field is written under inside its row object:
// the API name for base fields, the part after the join name for joined
// ones.
func jsonKey(f *schema.FieldDef) string {
	if f.Join == "" {
		return f.APIName
	}
	return strings.TrimPrefix(f.APIName, f.Join+".")
}

// TableSource returns the FROM clause for an object.
func TableSource(obj *schema.ObjectDef) string {
	return obj.TableName() + " " + QI(schema.BaseAlias)
}
