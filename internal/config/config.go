package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	AdminEmail    string
	AdminPassword string
	AdminName     string

	// lunch tracking knobs
	DefaultCutoff string // "HH:MM" written into new daily records
	FinalizeAt    string // "HH:MM" wall-clock trigger for the scheduler
	Timezone      string // IANA name, or "Local"
	CronToken     string // optional shared secret for GET /cutoff

	MemeSubreddits []string

	OTLPEndpoint string
	CORSOrigins  []string
}

func Load() Config {
	// best effort; absent .env is the normal production case
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTTL:  time.Duration(getEnvInt("ACCESS_TTL_MIN", 15)) * time.Minute,
		RefreshTTL: time.Duration(getEnvInt("REFRESH_TTL_DAYS", 7)) * 24 * time.Hour,

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),

		DefaultCutoff: getEnv("DEFAULT_CUTOFF", "12:30"),
		FinalizeAt:    getEnv("FINALIZE_AT", "12:35"),
		Timezone:      getEnv("TIMEZONE", "Local"),
		CronToken:     getEnv("CRON_TOKEN", ""),

		MemeSubreddits: getEnvList("MEME_SUBREDDITS", []string{"aww", "wholesomememes", "foodmemes"}),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "lunchboard")
	pass := getEnv("DB_PASSWORD", "lunchboard")
	name := getEnv("DB_NAME", "lunchboard")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// Location resolves the configured timezone. Everyone using the board is
// assumed to sit in this one zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}

	loc, err := time.LoadLocation(c.Timezone)

	if err != nil {
		fmt.Println("invalid TIMEZONE, falling back to local:", err)
		return time.Local
	}

	return loc
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)

	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return fallback
	}

	return out
}
