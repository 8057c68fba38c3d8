package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jakirh/lunchboard/internal/actorctx"
	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/observability"
	"github.com/jakirh/lunchboard/internal/services"
)

// DayLocker is the distributed once-per-day guard. Optional: without one the
// scheduler still runs, relying on the finalizer's idempotence.
type DayLocker interface {
	AcquireDayLock(ctx context.Context, date string, ttl time.Duration) (bool, error)
	ReleaseDayLock(ctx context.Context, date string) error
}

type Config struct {
	// FinalizeAt is the local wall-clock time ("HH:MM") to fire on weekdays.
	FinalizeAt string
	Location   *time.Location
	// Tick is how often the loop re-checks the clock. Small enough to not
	// miss the minute, large enough to stay cheap.
	Tick time.Duration
	Now  func() time.Time
}

// Scheduler fires the cutoff finalizer once per weekday at the configured
// time. It is a plain ticker loop, not a cron library: one fire time a day
// does not need cron expressions.
type Scheduler struct {
	cfg     Config
	svc     *services.Service
	locker  DayLocker
	log     *slog.Logger
	metrics *observability.RunMetrics

	readyMu sync.RWMutex
	ready   bool

	// lastFired guards against double fires within one process.
	lastFired string
}

func New(cfg Config, svc *services.Service, locker DayLocker, log *slog.Logger, metrics *observability.RunMetrics) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 15 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if _, err := lunch.ParseCutoff(cfg.FinalizeAt, time.Now()); err != nil {
		cfg.FinalizeAt = "12:35"
	}

	return &Scheduler{
		cfg:     cfg,
		svc:     svc,
		locker:  locker,
		log:     log,
		metrics: metrics,
	}
}

// Due reports whether the finalizer should fire now: a weekday, at or past
// the fire time, not yet fired for this date in this process.
func (s *Scheduler) Due(now time.Time) bool {
	local := now.In(s.cfg.Location)

	if lunch.IsWeekend(local) {
		return false
	}

	date := lunch.FormatDate(local)
	if date == s.lastFired {
		return false
	}

	fireAt, err := lunch.ParseCutoff(s.cfg.FinalizeAt, local)
	if err != nil {
		return false
	}

	return !local.Before(fireAt)
}

func (s *Scheduler) Run(ctx context.Context) error {
	s.setReady(true)
	defer s.setReady(false)

	s.log.Info("scheduler started", "finalize_at", s.cfg.FinalizeAt, "tz", s.cfg.Location.String())

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler received shutdown signal")
			return nil

		case <-ticker.C:
			now := s.cfg.Now()
			if !s.Due(now) {
				continue
			}

			s.fire(ctx, now)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, now time.Time) {
	date := lunch.FormatDate(now.In(s.cfg.Location))
	s.lastFired = date

	if s.locker != nil {
		won, err := s.locker.AcquireDayLock(ctx, date, 20*time.Hour)
		if err != nil {
			// redis down: fire anyway, the finalizer tolerates reruns
			s.log.Warn("day lock unavailable", "date", date, "error", err)
		} else if !won {
			s.log.Info("another scheduler owns today", "date", date)
			return
		}
	}

	s.metrics.IncFired()
	started := time.Now()

	result, err := s.svc.Finalize(actorctx.System(ctx), "schedule")

	s.metrics.ObserveDuration(time.Since(started))

	switch {
	case errors.Is(err, lunch.ErrNoLunchToday):
		s.metrics.IncSkipped()
		s.log.Info("finalize fired before any record existed", "date", date)

	case err != nil:
		s.metrics.IncFailed()
		s.log.Error("finalize failed", "date", date, "error", err)

		// let a rerun reclaim the day
		s.lastFired = ""
		if s.locker != nil {
			if rerr := s.locker.ReleaseDayLock(ctx, date); rerr != nil {
				s.log.Warn("day lock not released", "date", date, "error", rerr)
			}
		}

	case result.Skipped:
		s.metrics.IncSkipped()

	default:
		s.metrics.IncDone()
	}
}

func (s *Scheduler) setReady(v bool) {
	s.readyMu.Lock()
	s.ready = v
	s.readyMu.Unlock()
}
