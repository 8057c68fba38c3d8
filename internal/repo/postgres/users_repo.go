package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jakirh/lunchboard/internal/domain/user"
	"github.com/jakirh/lunchboard/internal/observability"
)

const userColumns = `id, email, password_hash, name, is_admin, default_response, notification_preference, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.IsAdmin,
		&u.DefaultResponse,
		&u.NotificationPreference,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:                     uuid.NewString(),
		Email:                  email,
		PasswordHash:           passwordHash,
		Name:                   name,
		IsAdmin:                false,
		NotificationPreference: user.NotifyNone,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	err := r.observe("users.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			u.ID, u.Email, u.PasswordHash, u.Name, u.IsAdmin, u.DefaultResponse, u.NotificationPreference, u.CreatedAt, u.UpdatedAt,
		)
		return e
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("users.list", func() error {
		rows, err = r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name ASC, id ASC`)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]user.User, 0, 16)

	for rows.Next() {
		u, err := scanUser(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, u)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

// SetDefaultResponse writes the user's standing yes/no preference.
func (r *UsersRepo) SetDefaultResponse(ctx context.Context, id string, defaultResponse string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("users.set_default_response", func() error {
		tag, err = r.pool.Exec(ctx, `
			UPDATE users
			SET default_response = $2,
			    updated_at = NOW()
			WHERE id = $1
		`, id, defaultResponse)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.update_profile", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx, `
			UPDATE users
			SET name = COALESCE($2, name),
			    default_response = COALESCE($3, default_response),
			    notification_preference = COALESCE($4, notification_preference),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id, req.Name, req.DefaultResponse, req.NotificationPreference,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}
