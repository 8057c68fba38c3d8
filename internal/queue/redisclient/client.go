package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// this ping function checks redis connectivity

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

// this closes the client

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// AcquireDayLock takes a best-effort once-per-day lock for the cutoff run.
// Returns true if this process won the date. The finalizer is idempotent, so
// losing the race is harmless; the lock just keeps redundant schedulers quiet.
func (c *Client) AcquireDayLock(ctx context.Context, date string, ttl time.Duration) (bool, error) {
	return c.redisdb.SetNX(ctx, "lunch:cutoff:"+date, "1", ttl).Result()
}

// ReleaseDayLock drops the lock so a retry can reclaim it after a failed run.
func (c *Client) ReleaseDayLock(ctx context.Context, date string) error {
	return c.redisdb.Del(ctx, "lunch:cutoff:"+date).Err()
}
