package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/atlekbai/casewatch/internal/query"
	"github.com/atlekbai/casewatch/internal/schema"
)

// DuckDB serves lists from an embedded DuckDB database, typically one view
// per table over a directory of CSV exports.
type DuckDB struct {
	db *sql.DB
}

// OpenDuckDB opens a DuckDB database at dsn ("" for in-memory).
func OpenDuckDB(dsn string) (*DuckDB, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDB{db: db}, nil
}

// DB exposes the underlying handle, mainly for seeding.
func (s *DuckDB) DB() *sql.DB { return s.db }

// RegisterCSVViews creates a view named after each catalog table over
// <dir>/<table>.csv. Tables without a file are skipped with a warning and
// fail at query time.
func (s *DuckDB) RegisterCSVViews(ctx context.Context, dir string, objs []*schema.ObjectDef, log zerolog.Logger) (int, error) {
	registered := 0
	for _, table := range catalogTables(objs) {
		path := filepath.Join(dir, table+".csv")
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Warn().Str("table", table).Str("path", path).Msg("csv file missing, table not registered")
				continue
			}
			return registered, err
		}
		stmt := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM read_csv_auto(%s, header = true)",
			query.QI(table), query.QuoteLit(path))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return registered, fmt.Errorf("register view %s: %w", table, err)
		}
		registered++
	}
	return registered, nil
}

// List runs an exact count, then the page query.
func (s *DuckDB) List(ctx context.Context, obj *schema.ObjectDef, params *query.QueryParams) (*Page, error) {
	builder := query.NewBuilder(obj, query.DuckDB)

	countSQL, countArgs, err := builder.BuildCount(params)
	if err != nil {
		return nil, err
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", obj.APIName, err)
	}

	sqlStr, args, err := builder.BuildList(params)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", obj.APIName, err)
	}
	defer rows.Close()

	var results []json.RawMessage
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		results = append(results, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPage(params, total, results), nil
}

func (s *DuckDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *DuckDB) Close() {
	s.db.Close()
}
