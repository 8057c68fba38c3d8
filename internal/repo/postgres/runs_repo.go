package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jakirh/lunchboard/internal/domain/run"
	"github.com/jakirh/lunchboard/internal/observability"
	"github.com/jakirh/lunchboard/internal/utils"
)

const runColumns = `id, date, status, processed, total, triggered_by, last_error, started_at, finished_at, created_at, updated_at`

type RunsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRunsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RunsRepo {
	return &RunsRepo{pool: pool, prom: prom}
}

func (r *RunsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanRun(row pgx.Row) (run.Run, error) {
	var rn run.Run

	err := row.Scan(
		&rn.ID,
		&rn.Date,
		&rn.Status,
		&rn.Processed,
		&rn.Total,
		&rn.TriggeredBy,
		&rn.LastError,
		&rn.StartedAt,
		&rn.FinishedAt,
		&rn.CreatedAt,
		&rn.UpdatedAt,
	)

	return rn, err
}

func (r *RunsRepo) Start(ctx context.Context, req run.StartRequest) (run.Run, error) {
	rn := run.New(req)

	err := r.observe("cutoff_runs.start", func() error {
		_, e := r.pool.Exec(ctx, `
			INSERT INTO cutoff_runs (`+runColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, rn.ID, rn.Date, string(rn.Status), rn.Processed, rn.Total, rn.TriggeredBy, rn.LastError, rn.StartedAt, rn.FinishedAt, rn.CreatedAt, rn.UpdatedAt)
		return e
	})

	if err != nil {
		return run.Run{}, err
	}

	return rn, nil
}

func (r *RunsRepo) Complete(ctx context.Context, id string, processed, total int) error {
	return r.observe("cutoff_runs.complete", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE cutoff_runs
			SET status = 'done',
			    processed = $2,
			    total = $3,
			    finished_at = NOW(),
			    updated_at = NOW()
			WHERE id = $1
		`, id, processed, total)
		return err
	})
}

func (r *RunsRepo) Fail(ctx context.Context, id string, errMsg string) error {
	return r.observe("cutoff_runs.fail", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE cutoff_runs
			SET status = 'failed',
			    last_error = $2,
			    finished_at = NOW(),
			    updated_at = NOW()
			WHERE id = $1
		`, id, errMsg)
		return err
	})
}

func (r *RunsRepo) GetByID(ctx context.Context, id string) (run.Run, error) {
	var rn run.Run
	var err error

	err = r.observe("cutoff_runs.get_by_id", func() error {
		rn, err = scanRun(r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM cutoff_runs WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return run.Run{}, run.ErrNotFound
		}

		return run.Run{}, err
	}

	return rn, nil
}

// LatestForDate returns the most recent run recorded for a date.
func (r *RunsRepo) LatestForDate(ctx context.Context, date string) (run.Run, error) {
	var rn run.Run
	var err error

	err = r.observe("cutoff_runs.latest_for_date", func() error {
		rn, err = scanRun(r.pool.QueryRow(ctx, `
			SELECT `+runColumns+`
			FROM cutoff_runs
			WHERE date = $1
			ORDER BY updated_at DESC, id DESC
			LIMIT 1
		`, date))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return run.Run{}, run.ErrNotFound
		}

		return run.Run{}, err
	}

	return rn, nil
}

// ListCursor pages runs newest-first using an (updated_at, id) keyset cursor.
func (r *RunsRepo) ListCursor(
	ctx context.Context,
	limit int,
	afterUpdatedAt time.Time,
	afterID string,
) ([]run.Run, *string, bool, error) {
	if limit <= 0 {
		limit = 20
	}

	baseQuery := `SELECT ` + runColumns + ` FROM cutoff_runs`

	var rows pgx.Rows
	var err error

	if afterID != "" {
		err = r.observe("cutoff_runs.list_cursor", func() error {
			rows, err = r.pool.Query(ctx, baseQuery+`
				WHERE (updated_at, id) < ($1, $2)
				ORDER BY updated_at DESC, id DESC
				LIMIT $3
			`, afterUpdatedAt, afterID, limit+1)
			return err
		})
	} else {
		err = r.observe("cutoff_runs.list_cursor", func() error {
			rows, err = r.pool.Query(ctx, baseQuery+`
				ORDER BY updated_at DESC, id DESC
				LIMIT $1
			`, limit+1)
			return err
		})
	}

	if err != nil {
		return nil, nil, false, err
	}

	defer rows.Close()

	out := make([]run.Run, 0, limit+1)

	for rows.Next() {
		rn, err := scanRun(rows)

		if err != nil {
			return nil, nil, false, err
		}

		out = append(out, rn)
	}

	err = rows.Err()

	if err != nil {
		return nil, nil, false, err
	}

	hasMore := len(out) > limit

	if hasMore {
		out = out[:limit]
	}

	var next *string

	if hasMore && len(out) > 0 {
		last := out[len(out)-1]
		cursor, err := utils.EncodeRunCursor(last.UpdatedAt, last.ID)

		if err != nil {
			return nil, nil, false, fmt.Errorf("encode run cursor: %w", err)
		}

		next = &cursor
	}

	return out, next, hasMore, nil
}
