package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/observability"
)

const lunchColumns = `date, available, unavailable_reason, cutoff_time, allow_late_responses, created_at, updated_at`

type LunchRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewLunchRepo(pool *pgxpool.Pool, prom *observability.Prom) *LunchRepo {
	return &LunchRepo{pool: pool, prom: prom}
}

func (r *LunchRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanLunch(row pgx.Row) (lunch.DailyLunch, error) {
	var d lunch.DailyLunch

	err := row.Scan(
		&d.Date,
		&d.Available,
		&d.UnavailableReason,
		&d.CutoffTime,
		&d.AllowLateResponses,
		&d.CreatedAt,
		&d.UpdatedAt,
	)

	return d, err
}

func (r *LunchRepo) GetByDate(ctx context.Context, date string) (lunch.DailyLunch, error) {
	var d lunch.DailyLunch
	var err error

	err = r.observe("daily_lunch.get_by_date", func() error {
		d, err = scanLunch(r.pool.QueryRow(ctx, `SELECT `+lunchColumns+` FROM daily_lunch WHERE date = $1`, date))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lunch.DailyLunch{}, lunch.ErrNotFound
		}

		return lunch.DailyLunch{}, err
	}

	return d, nil
}

// CreateIfAbsent inserts the record for its date unless one already exists,
// and returns whatever row ended up winning. Concurrent reconcilers racing on
// the same date all converge on the first writer's row.
func (r *LunchRepo) CreateIfAbsent(ctx context.Context, d lunch.DailyLunch) (lunch.DailyLunch, error) {
	now := time.Now().UTC()

	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	err := r.observe("daily_lunch.create_if_absent", func() error {
		_, e := r.pool.Exec(ctx, `
			INSERT INTO daily_lunch (`+lunchColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (date) DO NOTHING
		`, d.Date, d.Available, d.UnavailableReason, d.CutoffTime, d.AllowLateResponses, d.CreatedAt, d.UpdatedAt)
		return e
	})

	if err != nil {
		return lunch.DailyLunch{}, err
	}

	// re-read so a lost race still returns the stored row
	return r.GetByDate(ctx, d.Date)
}

// SetAvailability updates availability; reason is written only when provided
// (nil leaves the stored reason untouched).
func (r *LunchRepo) SetAvailability(ctx context.Context, date string, available bool, reason *string, writeReason bool) (lunch.DailyLunch, error) {
	var d lunch.DailyLunch
	var err error

	query := `
		UPDATE daily_lunch
		SET available = $2,
		    updated_at = NOW()
		WHERE date = $1
		RETURNING ` + lunchColumns

	args := []interface{}{date, available}

	if writeReason {
		query = `
		UPDATE daily_lunch
		SET available = $2,
		    unavailable_reason = $3,
		    updated_at = NOW()
		WHERE date = $1
		RETURNING ` + lunchColumns
		args = append(args, reason)
	}

	err = r.observe("daily_lunch.set_availability", func() error {
		d, err = scanLunch(r.pool.QueryRow(ctx, query, args...))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lunch.DailyLunch{}, lunch.ErrNotFound
		}

		return lunch.DailyLunch{}, err
	}

	return d, nil
}

func (r *LunchRepo) SetAllowLateResponses(ctx context.Context, date string, allow bool) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("daily_lunch.set_allow_late", func() error {
		tag, err = r.pool.Exec(ctx, `
			UPDATE daily_lunch
			SET allow_late_responses = $2,
			    updated_at = NOW()
			WHERE date = $1
		`, date, allow)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return lunch.ErrNotFound
	}

	return nil
}
