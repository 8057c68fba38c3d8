package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jakirh/lunchboard/internal/config"
	"github.com/jakirh/lunchboard/internal/db"
	"github.com/jakirh/lunchboard/internal/notifications"
	"github.com/jakirh/lunchboard/internal/observability"
	"github.com/jakirh/lunchboard/internal/queue/redisclient"
	"github.com/jakirh/lunchboard/internal/repo/postgres"
	"github.com/jakirh/lunchboard/internal/scheduler"
	"github.com/jakirh/lunchboard/internal/services"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer redisClient.Close()

	usersRepo := postgres.NewUsersRepo(pool, nil)
	lunchRepo := postgres.NewLunchRepo(pool, nil)
	responsesRepo := postgres.NewResponsesRepo(pool, nil)
	runsRepo := postgres.NewRunsRepo(pool, nil)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	svc := services.NewService(lunchRepo, responsesRepo, usersRepo, runsRepo, notifier, log, services.Config{
		DefaultCutoff: cfg.DefaultCutoff,
		Location:      cfg.Location(),
	})

	metrics := observability.NewRunMetrics()

	sched := scheduler.New(scheduler.Config{
		FinalizeAt: cfg.FinalizeAt,
		Location:   cfg.Location(),
	}, svc, redisClient, log, metrics)

	// small sidecar server for probes and stats
	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           sched.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", "err", err)
		}
	}()

	log.Info("scheduler has started")

	if err := sched.Run(ctx); err != nil {
		log.Error("scheduler stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("scheduler shutdown complete")
}
