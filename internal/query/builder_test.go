package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/atlekbai/casewatch/internal/filter"
	"github.com/atlekbai/casewatch/internal/schema"
)

// --- Helpers ---

var catalog = schema.NewCache()

func testObj(t *testing.T, name string) *schema.ObjectDef {
	t.Helper()
	obj := catalog.Get(name)
	if obj == nil {
		t.Fatalf("object %q missing from catalog", name)
	}
	return obj
}

func mustParams(t *testing.T, obj *schema.ObjectDef, in ParamsInput) *QueryParams {
	t.Helper()
	p, err := ParseParams(obj, in)
	if err != nil {
		t.Fatalf("ParseParams failed: %v", err)
	}
	return p
}

func mustDecodeFilter(t *testing.T, js string) *filter.ConditionGroup {
	t.Helper()
	var g filter.ConditionGroup
	if err := g.UnmarshalJSON([]byte(js)); err != nil {
		t.Fatalf("decode filter: %v", err)
	}
	return &g
}

// --- List ---

func TestBuildListSimpleObject(t *testing.T) {
	obj := testObj(t, schema.Diseases)
	params := mustParams(t, obj, ParamsInput{})

	sql, args, err := NewBuilder(obj, Postgres).BuildList(params)
	if err != nil {
		t.Fatal(err)
	}
	want := `SELECT json_build_object('id', "_e"."id", 'name', "_e"."name") AS _row FROM "Disease" "_e" ORDER BY "_e"."id" ASC LIMIT 100 OFFSET 0`
	if sql != want {
		t.Fatalf("expected\n  %s\ngot\n  %s", want, sql)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestBuildListReportCasesPostgres(t *testing.T) {
	obj := testObj(t, schema.ReportCases)
	params := mustParams(t, obj, ParamsInput{
		Query:    `Disease = "Monkeypox" OR (Date >= "2022-01-01" AND TotalDeath > 10)`,
		Order:    "totalConfirmed.desc",
		Page:     3,
		PageSize: 20,
	})

	sql, args, err := NewBuilder(obj, Postgres).BuildList(params)
	if err != nil {
		t.Fatal(err)
	}

	for _, frag := range []string{
		`FROM "report_case" "_e"`,
		`LEFT JOIN "Disease" "disease" ON "disease"."id" = "_e"."diseaseId"`,
		`LEFT JOIN "localization" "localization" ON "localization"."id" = "_e"."localizationId"`,
		`LEFT JOIN "LocalizationData" "localizationData" ON "localizationData"."localizationId" = "_e"."localizationId" AND "localizationData"."date" = "_e"."date"`,
		`WHERE ("disease"."name" = $1 OR ("_e"."date" >= CAST($2 AS DATE) AND "_e"."totalDeath" > CAST($3 AS NUMERIC)))`,
		`ORDER BY "_e"."totalConfirmed" DESC, "_e"."id" DESC LIMIT 20 OFFSET 40`,
		`'disease', CASE WHEN "disease"."id" IS NOT NULL THEN json_build_object('id', "disease"."id", 'name', "disease"."name") ELSE NULL END`,
		`'totalDeath', "_e"."totalDeath"`,
	} {
		if !strings.Contains(sql, frag) {
			t.Errorf("expected SQL to contain\n  %s\ngot\n  %s", frag, sql)
		}
	}
	if len(args) != 3 || args[0] != "Monkeypox" || args[1] != "2022-01-01" || args[2] != int64(10) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildListDuckDB(t *testing.T) {
	obj := testObj(t, schema.ReportCases)
	params := mustParams(t, obj, ParamsInput{
		Filter: mustDecodeFilter(t, `{"conditions":[{"field":"totalActive","comparisonOperator":"<=","value":5}]}`),
	})

	sql, args, err := NewBuilder(obj, DuckDB).BuildList(params)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(sql, "SELECT CAST(json_object(") {
		t.Fatalf("expected DuckDB json_object row, got %s", sql)
	}
	if !strings.Contains(sql, `WHERE ("_e"."totalActive" <= ?)`) {
		t.Fatalf("expected ? placeholder without cast, got %s", sql)
	}
	if strings.Contains(sql, "$1") {
		t.Fatalf("unexpected dollar placeholder in %s", sql)
	}
	if len(args) != 1 || args[0] != int64(5) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildListSelect(t *testing.T) {
	obj := testObj(t, schema.ReportCases)
	params := mustParams(t, obj, ParamsInput{Select: []string{"date", "Disease"}})

	sql, _, err := NewBuilder(obj, Postgres).BuildList(params)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sql, `json_build_object('date', "_e"."date", 'disease', CASE WHEN "disease"."id" IS NOT NULL THEN json_build_object('name', "disease"."name") ELSE NULL END) AS _row`) {
		t.Fatalf("unexpected projection: %s", sql)
	}
	if strings.Contains(sql, `'totalDeath'`) || strings.Contains(sql, `'localization',`) {
		t.Fatalf("unselected fields in projection: %s", sql)
	}
}

// --- Count / estimate ---

func TestBuildCountAndEstimate(t *testing.T) {
	obj := testObj(t, schema.LocalizationData)
	params := mustParams(t, obj, ParamsInput{Query: `Country LIKE "Po%" AND vaccinationRate >= 0.5`})
	b := NewBuilder(obj, Postgres)

	countSQL, countArgs, err := b.BuildCount(params)
	if err != nil {
		t.Fatal(err)
	}
	wantWhere := `WHERE ("localization"."country" LIKE $1 AND "_e"."vaccinationRate" >= CAST($2 AS NUMERIC))`
	if !strings.HasPrefix(countSQL, `SELECT count(*) FROM "LocalizationData" "_e" LEFT JOIN`) || !strings.HasSuffix(countSQL, wantWhere) {
		t.Fatalf("unexpected count SQL: %s", countSQL)
	}

	estSQL, estArgs, err := b.BuildEstimate(params)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(estSQL, "SELECT 1 FROM") || !strings.HasSuffix(estSQL, wantWhere) {
		t.Fatalf("unexpected estimate SQL: %s", estSQL)
	}
	if len(countArgs) != 2 || len(estArgs) != 2 || countArgs[0] != "Po%" || countArgs[1] != 0.5 {
		t.Fatalf("unexpected args: %v / %v", countArgs, estArgs)
	}
}

func TestFilterConditionEmpty(t *testing.T) {
	obj := testObj(t, schema.Roles)
	params := mustParams(t, obj, ParamsInput{})
	cond, err := FilterCondition(params.Predicate, obj, Postgres)
	if err != nil || cond != nil {
		t.Fatalf("expected no condition, got %v, %v", cond, err)
	}
}

func TestFilterConditionUnknownField(t *testing.T) {
	obj := testObj(t, schema.Roles)
	pred, err := filter.Compile(filter.NewGroup("", &filter.Condition{
		Field: "password", ComparisonOperator: filter.Eq, Value: filter.StringValue("x"),
	}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FilterCondition(pred, obj, Postgres); !errors.Is(err, schema.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestValuesNeverReachSQL(t *testing.T) {
	obj := testObj(t, schema.ReportCases)
	evil := `x'); DROP TABLE "report_case"; --`
	params := mustParams(t, obj, ParamsInput{
		Filter: filter.NewGroup("", &filter.Condition{
			Field: "disease.name", ComparisonOperator: filter.Eq, Value: filter.StringValue(evil),
		}),
	})
	for _, d := range []Dialect{Postgres, DuckDB} {
		sql, args, err := NewBuilder(obj, d).BuildList(params)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(sql, "DROP") {
			t.Fatalf("%s: value leaked into SQL: %s", d, sql)
		}
		if len(args) != 1 || args[0] != evil {
			t.Fatalf("%s: expected value as bound argument, got %v", d, args)
		}
	}
}
