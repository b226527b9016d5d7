package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/atlekbai/casewatch/internal/schema"
)

// Dialect selects the SQL flavour a Builder emits.
type Dialect int

const (
	Postgres Dialect = iota
	DuckDB
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case DuckDB:
		return "duckdb"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

func (d Dialect) placeholders() sq.PlaceholderFormat {
	if d == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// jsonObject builds a JSON object expression from alternating key/value
// pairs. DuckDB's JSON type is cast to text so both drivers scan it the same
// way.
func (d Dialect) jsonObject(pairs []string) string {
	if d == DuckDB {
		return fmt.Sprintf("CAST(json_object(%s) AS VARCHAR)", strings.Join(pairs, ", "))
	}
	return fmt.Sprintf("json_build_object(%s)", strings.Join(pairs, ", "))
}

// nestedObject is jsonObject for a value nested inside another object.
func (d Dialect) nestedObject(pairs []string) string {
	if d == DuckDB {
		return fmt.Sprintf("json_object(%s)", strings.Join(pairs, ", "))
	}
	return fmt.Sprintf("json_build_object(%s)", strings.Join(pairs, ", "))
}

// placeholder returns the bind expression a field is compared with. Casts
// pin the parameter type so drivers never have to guess it from a string.
func (d Dialect) placeholder(fd *schema.FieldDef) string {
	switch {
	case fd.Type == schema.FieldDate:
		return "CAST(? AS DATE)"
	case fd.IsNumeric() && d == Postgres:
		return "CAST(? AS NUMERIC)"
	default:
		return "?"
	}
}
