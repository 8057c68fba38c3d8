package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jakirh/lunchboard/internal/config"
	"github.com/jakirh/lunchboard/internal/domain/user"
	"github.com/jakirh/lunchboard/internal/security"
)

// EnsureAdminUser bootstraps the single admin account from config so a fresh
// deployment has someone who can flip lunch availability.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:                     uuid.NewString(),
		Email:                  cfg.AdminEmail,
		PasswordHash:           hash,
		Name:                   cfg.AdminName,
		IsAdmin:                true,
		NotificationPreference: user.NotifyNone,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, is_admin, notification_preference, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.IsAdmin, u.NotificationPreference, u.CreatedAt, u.UpdatedAt,
	)

	return err
}
