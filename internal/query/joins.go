package query

import (
	"fmt"
	"strings"

	"github.com/atlekbai/casewatch/internal/schema"
)

// joinClause builds the LEFT JOIN for j, e.g.
// "Disease" "disease" ON "disease"."id" = "_e"."diseaseId".
func joinClause(j *schema.JoinDef) string {
	on := make([]string, len(j.On))
	for i, c := range j.On {
		on[i] = fmt.Sprintf(`%s.%s = %s.%s`, QI(j.Name), QI(c.Remote), QI(schema.BaseAlias), QI(c.Local))
	}
	return fmt.Sprintf(`%s %s ON %s`, QI(j.Table), QI(j.Name), strings.Join(on, " AND "))
}

// joinObject renders the columns of a joined row as a nested JSON object,
// or NULL when the join found no row.
func joinObject(d Dialect, j *schema.JoinDef, fields []*schema.FieldDef) string {
	pairs := make([]string, 0, len(fields)*2)
	for _, f := range fields {
		pairs = append(pairs, QuoteLit(jsonKey(f)), f.QualifiedColumn())
	}
	probe := fmt.Sprintf(`%s.%s`, QI(j.Name), QI(j.On[0].Remote))
	return fmt.Sprintf(`CASE WHEN %s IS NOT NULL THEN %s ELSE NULL END`, probe, d.nestedObject(pairs))
}
