package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/atlekbai/casewatch/internal/query"
	"github.com/atlekbai/casewatch/internal/schema"
)

// exactCountThreshold is the planner estimate below which we run an exact count.
// Above this, the EXPLAIN estimate is returned directly.
const exactCountThreshold = 50_000

// Postgres serves lists from a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) List(ctx context.Context, obj *schema.ObjectDef, params *query.QueryParams) (*Page, error) {
	builder := query.NewBuilder(obj, query.Postgres)

	g, gctx := errgroup.WithContext(ctx)

	var totalCount int64
	g.Go(func() error {
		var err error
		totalCount, err = s.resolveCount(gctx, builder, params)
		return err
	})

	var rows []json.RawMessage
	g.Go(func() error {
		sqlStr, args, err := builder.BuildList(params)
		if err != nil {
			return err
		}
		dbRows, err := s.pool.Query(gctx, sqlStr, args...)
		if err != nil {
			return fmt.Errorf("list %s: %w", obj.APIName, err)
		}
		defer dbRows.Close()
		rows, err = scanJSONRows(dbRows)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return newPage(params, totalCount, rows), nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Postgres) Close() {
	s.pool.Close()
}

// resolveCount uses the EXPLAIN trick for cheap estimation on large tables,
// falling back to exact count only when the planner estimate is small.
func (s *Postgres) resolveCount(ctx context.Context, builder query.Builder, params *query.QueryParams) (int64, error) {
	estSQL, estArgs, err := builder.BuildEstimate(params)
	if err != nil {
		return 0, err
	}

	var planJSON string
	err = s.pool.QueryRow(ctx, "EXPLAIN (FORMAT JSON) "+estSQL, estArgs...).Scan(&planJSON)
	if err != nil {
		return 0, fmt.Errorf("explain estimate: %w", err)
	}

	estimated := parsePlanRows(planJSON)
	if estimated > exactCountThreshold {
		return estimated, nil
	}

	countSQL, countArgs, err := builder.BuildCount(params)
	if err != nil {
		return estimated, nil
	}
	var count int64
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&count); err != nil {
		return estimated, nil
	}
	return count, nil
}

// parsePlanRows extracts "Plan Rows" from EXPLAIN (FORMAT JSON) output.
func parsePlanRows(planJSON string) int64 {
	var plan []struct {
		Plan struct {
			PlanRows float64 `json:"Plan Rows"`
		} `json:"Plan"`
	}
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil || len(plan) == 0 {
		return 0
	}
	return int64(plan[0].Plan.PlanRows)
}

// scanJSONRows scans rows whose only column is a JSON object (_row).
func scanJSONRows(rows pgx.Rows) ([]json.RawMessage, error) {
	var results []json.RawMessage
	for rows.Next() {
		var data json.RawMessage
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, rows.Err()
}
