package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jakirh/lunchboard/internal/domain/response"
	"github.com/jakirh/lunchboard/internal/observability"
)

const responseColumns = `user_id, date, user_name, response, created_at, updated_at`

type ResponsesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewResponsesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ResponsesRepo {
	return &ResponsesRepo{pool: pool, prom: prom}
}

func (r *ResponsesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanResponse(row pgx.Row) (response.Response, error) {
	var resp response.Response

	err := row.Scan(
		&resp.UserID,
		&resp.Date,
		&resp.UserName,
		&resp.Response,
		&resp.CreatedAt,
		&resp.UpdatedAt,
	)

	return resp, err
}

func (r *ResponsesRepo) Get(ctx context.Context, userID, date string) (response.Response, error) {
	var resp response.Response
	var err error

	err = r.observe("responses.get", func() error {
		resp, err = scanResponse(r.pool.QueryRow(ctx,
			`SELECT `+responseColumns+` FROM responses WHERE user_id = $1 AND date = $2`,
			userID, date,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return response.Response{}, response.ErrNotFound
		}

		return response.Response{}, err
	}

	return resp, nil
}

// CreateIfAbsent seeds a response once per (user, date). A concurrent seeder
// losing the insert race gets the winner's row back, never a duplicate.
func (r *ResponsesRepo) CreateIfAbsent(ctx context.Context, resp response.Response) (response.Response, bool, error) {
	now := time.Now().UTC()

	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = now
	}
	if resp.UpdatedAt.IsZero() {
		resp.UpdatedAt = now
	}

	var created bool

	err := r.observe("responses.create_if_absent", func() error {
		tag, e := r.pool.Exec(ctx, `
			INSERT INTO responses (`+responseColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (user_id, date) DO NOTHING
		`, resp.UserID, resp.Date, resp.UserName, resp.Response, resp.CreatedAt, resp.UpdatedAt)

		if e != nil {
			return e
		}

		created = tag.RowsAffected() > 0
		return nil
	})

	if err != nil {
		return response.Response{}, false, err
	}

	if created {
		return resp, true, nil
	}

	existing, err := r.Get(ctx, resp.UserID, resp.Date)

	if err != nil {
		return response.Response{}, false, err
	}

	return existing, false, nil
}

// Upsert is the submit path: create the row or overwrite the answer.
// created_at is preserved on update, per the create-once invariant.
func (r *ResponsesRepo) Upsert(ctx context.Context, resp response.Response) (response.Response, error) {
	now := time.Now().UTC()

	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = now
	}
	resp.UpdatedAt = now

	var out response.Response
	var err error

	err = r.observe("responses.upsert", func() error {
		out, err = scanResponse(r.pool.QueryRow(ctx, `
			INSERT INTO responses (`+responseColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (user_id, date) DO UPDATE
			SET response = EXCLUDED.response,
			    user_name = EXCLUDED.user_name,
			    updated_at = EXCLUDED.updated_at
			RETURNING `+responseColumns,
			resp.UserID, resp.Date, resp.UserName, resp.Response, resp.CreatedAt, resp.UpdatedAt,
		))
		return err
	})

	if err != nil {
		return response.Response{}, err
	}

	return out, nil
}

func (r *ResponsesRepo) ListByDate(ctx context.Context, date string) ([]response.Response, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("responses.list_by_date", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT `+responseColumns+` FROM responses WHERE date = $1 ORDER BY updated_at DESC, user_id ASC`,
			date,
		)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]response.Response, 0, 16)

	for rows.Next() {
		resp, err := scanResponse(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, resp)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}
