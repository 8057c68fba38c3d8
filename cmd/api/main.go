package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jakirh/lunchboard/internal/auth"
	"github.com/jakirh/lunchboard/internal/cache"
	"github.com/jakirh/lunchboard/internal/config"
	"github.com/jakirh/lunchboard/internal/db"
	httpx "github.com/jakirh/lunchboard/internal/http"
	"github.com/jakirh/lunchboard/internal/notifications"
	"github.com/jakirh/lunchboard/internal/observability"
	"github.com/jakirh/lunchboard/internal/queue/redisclient"
	"github.com/jakirh/lunchboard/internal/repo/cached"
	"github.com/jakirh/lunchboard/internal/repo/postgres"
	"github.com/jakirh/lunchboard/internal/services"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is best effort; the exporter buffers until a collector shows up
	shutdownTracer, err := observability.InitTracer(context.Background(), "lunchboard-api", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracer init failed", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	migrateCtx, cancelMigrate := config.WithTimeout(30 * time.Second)

	if err := db.Migrate(migrateCtx, pool); err != nil {
		cancelMigrate()
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureAdminUser(migrateCtx, pool, cfg); err != nil {
		cancelMigrate()
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
	cancelMigrate()

	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer redisClient.Close()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	usersRepo := postgres.NewUsersRepo(pool, prom)
	lunchRepo := postgres.NewLunchRepo(pool, prom)
	responsesRepo := postgres.NewResponsesRepo(pool, prom)
	runsRepo := postgres.NewRunsRepo(pool, prom)
	tokensRepo := postgres.NewRefreshTokensRepo(pool)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	cachedUsers := cached.NewUsersRepo(usersRepo, cache.New(30*time.Second))

	svc := services.NewService(lunchRepo, responsesRepo, cachedUsers, runsRepo, notifier, log, services.Config{
		DefaultCutoff: cfg.DefaultCutoff,
		Location:      cfg.Location(),
		Prom:          prom,
	})

	router := httpx.NewRouter(httpx.RouterDeps{
		Cfg:    cfg,
		Log:    log,
		Pool:   pool,
		Redis:  redisClient,
		Prom:   prom,
		Reg:    reg,
		JWT:    jwtManager,
		Svc:    svc,
		Users:  usersRepo,
		Runs:   runsRepo,
		Tokens: tokensRepo,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Warn("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
