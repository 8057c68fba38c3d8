package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jakirh/lunchboard/internal/auth"
	"github.com/jakirh/lunchboard/internal/cache"
	"github.com/jakirh/lunchboard/internal/config"
	"github.com/jakirh/lunchboard/internal/http/handlers"
	"github.com/jakirh/lunchboard/internal/http/middlewares"
	"github.com/jakirh/lunchboard/internal/observability"
	"github.com/jakirh/lunchboard/internal/queue/redisclient"
	"github.com/jakirh/lunchboard/internal/repo/postgres"
	"github.com/jakirh/lunchboard/internal/services"
)

type RouterDeps struct {
	Cfg    config.Config
	Log    *slog.Logger
	Pool   *pgxpool.Pool
	Redis  *redisclient.Client
	Prom   *observability.Prom
	Reg    *prometheus.Registry
	JWT    *auth.Manager
	Svc    *services.Service
	Users  *postgres.UsersRepo
	Runs   *postgres.RunsRepo
	Tokens *postgres.RefreshTokensRepo
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("lunchboard-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(d.Prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB
	r.Use(middlewares.RequireJSON())

	// health + metrics

	pings := map[string]func() error{
		"db": func() error {
			if d.Pool == nil {
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return d.Pool.Ping(ctx)
		},
		"redis": func() error {
			if d.Redis == nil {
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return d.Redis.Ping(ctx)
		},
	}

	health := handlers.NewHealthHandler(pings)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Reg, promhttp.HandlerOpts{})))

	// rate limiters: tight on auth, loose on authed traffic

	authLimiter := middlewares.NewRateLimiter(10, time.Minute)
	apiLimiter := middlewares.NewRateLimiter(120, time.Minute)

	authMw := middlewares.NewAuthMiddleware(d.JWT)

	// auth

	authHandler := handlers.NewAuthHandler(d.Users, d.Users, d.JWT, d.Tokens, d.Cfg)

	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// cron trigger: no session, token checked in the handler

	cutoffHandler := handlers.NewCutoffHandler(d.Svc, d.Cfg.CronToken)
	r.GET("/cutoff", cutoffHandler.Trigger)

	// meme proxy needs no auth, it serves the logged-out splash too

	memeCache := cache.New(1 * time.Minute)
	memesHandler := handlers.NewMemesHandler(d.Cfg.MemeSubreddits, memeCache)
	r.GET("/meme", apiLimiter.RateLimiterMiddleware(middlewares.KeyByIP), memesHandler.Get)

	// authenticated surface

	lunchHandler := handlers.NewLunchHandler(d.Svc)
	responsesHandler := handlers.NewResponsesHandler(d.Svc)
	meHandler := handlers.NewMeHandler(d.Users)

	authed := r.Group("/")
	authed.Use(authMw.RequireAuth())
	authed.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	{
		authed.GET("/me", meHandler.Get)
		authed.PATCH("/me", meHandler.Update)
		authed.GET("/lunch/today", lunchHandler.Today)
		authed.PUT("/lunch/today/response", responsesHandler.Submit)
	}

	// admin surface

	adminHandler := handlers.NewAdminHandler(d.Svc)
	runsHandler := handlers.NewRunsHandler(d.Runs)

	admin := r.Group("/admin")
	admin.Use(authMw.RequireAuth())
	admin.Use(authMw.RequireAdmin())
	admin.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	{
		admin.PUT("/lunch/availability", adminHandler.SetAvailability)
		admin.PUT("/lunch/late-responses", adminHandler.SetLateResponses)
		admin.POST("/lunch/bulk-resolve", adminHandler.BulkResolve)
		admin.GET("/runs", runsHandler.List)
		admin.GET("/runs/:id", runsHandler.Get)
		admin.GET("/cutoff", cutoffHandler.Trigger)
	}

	return r
}
