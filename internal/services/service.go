package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/domain/response"
	"github.com/jakirh/lunchboard/internal/domain/run"
	"github.com/jakirh/lunchboard/internal/domain/user"
	"github.com/jakirh/lunchboard/internal/notifications"
	"github.com/jakirh/lunchboard/internal/observability"
)

// LunchStore is the slice of the daily lunch repository the service needs.
type LunchStore interface {
	GetByDate(ctx context.Context, date string) (lunch.DailyLunch, error)
	CreateIfAbsent(ctx context.Context, d lunch.DailyLunch) (lunch.DailyLunch, error)
	SetAvailability(ctx context.Context, date string, available bool, reason *string, writeReason bool) (lunch.DailyLunch, error)
	SetAllowLateResponses(ctx context.Context, date string, allow bool) error
}

type ResponseStore interface {
	Get(ctx context.Context, userID, date string) (response.Response, error)
	CreateIfAbsent(ctx context.Context, r response.Response) (response.Response, bool, error)
	Upsert(ctx context.Context, r response.Response) (response.Response, error)
	ListByDate(ctx context.Context, date string) ([]response.Response, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	SetDefaultResponse(ctx context.Context, id string, answer string) error
}

// RunStore records finalizer executions. Optional: a nil store disables
// the audit trail without changing finalizer behavior.
type RunStore interface {
	Start(ctx context.Context, req run.StartRequest) (run.Run, error)
	Complete(ctx context.Context, id string, processed, total int) error
	Fail(ctx context.Context, id string, errMsg string) error
}

// Notifier receives a summary after a successful finalize. Failures are
// logged and never fail the run.
type Notifier interface {
	SendCutoffSummary(ctx context.Context, input notifications.SendCutoffSummaryInput) error
}

type Config struct {
	DefaultCutoff string
	Location      *time.Location
	Now           func() time.Time
	Prom          *observability.Prom
}

// Service owns the daily lunch lifecycle: lazy record creation, response
// submission, admin mutations and the cutoff finalizer.
type Service struct {
	lunches   LunchStore
	responses ResponseStore
	users     UserStore
	runs      RunStore
	notifier  Notifier
	log       *slog.Logger
	prom      *observability.Prom

	defaultCutoff string
	loc           *time.Location
	now           func() time.Time
}

func NewService(lunches LunchStore, responses ResponseStore, users UserStore, runs RunStore, notifier Notifier, log *slog.Logger, cfg Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	cutoff := cfg.DefaultCutoff
	if _, err := lunch.ParseCutoff(cutoff, time.Now()); err != nil {
		cutoff = lunch.DefaultCutoff
	}

	return &Service{
		lunches:       lunches,
		responses:     responses,
		users:         users,
		runs:          runs,
		notifier:      notifier,
		log:           log,
		prom:          cfg.Prom,
		defaultCutoff: cutoff,
		loc:           loc,
		now:           now,
	}
}

// Today returns the current wall-clock time in the service timezone.
func (s *Service) Today() time.Time {
	return s.now().In(s.loc)
}

// EnsureToday returns today's lunch record, creating it on first access.
// A brand new record inherits holiday closures from the previous day and
// otherwise starts available with the configured cutoff.
func (s *Service) EnsureToday(ctx context.Context) (lunch.DailyLunch, error) {
	today := s.Today()
	if lunch.IsWeekend(today) {
		return lunch.DailyLunch{}, lunch.ErrWeekend
	}

	date := lunch.FormatDate(today)

	d, err := s.lunches.GetByDate(ctx, date)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, lunch.ErrNotFound) {
		return lunch.DailyLunch{}, err
	}

	fresh := lunch.DailyLunch{
		Date:               date,
		Available:          true,
		CutoffTime:         s.defaultCutoff,
		AllowLateResponses: false,
	}

	prevDate := lunch.FormatDate(today.AddDate(0, 0, -1))
	if prev, err := s.lunches.GetByDate(ctx, prevDate); err == nil && lunch.CarriesHoliday(&prev) {
		fresh.Available = false
		fresh.UnavailableReason = prev.UnavailableReason
	}

	created, err := s.lunches.CreateIfAbsent(ctx, fresh)
	if err != nil {
		return lunch.DailyLunch{}, err
	}

	if created.CreatedAt.Equal(created.UpdatedAt) {
		s.log.Info("created daily lunch record", "date", date, "available", created.Available)
	}

	return created, nil
}

// defaultAnswer resolves a user's seed answer: their saved default, or "no".
func defaultAnswer(u user.User) string {
	if u.DefaultResponse != nil && response.Answer(*u.DefaultResponse).IsValid() {
		return *u.DefaultResponse
	}
	return string(response.No)
}
