package services

import (
	"context"
	"errors"
	"time"

	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/domain/response"
	"github.com/jakirh/lunchboard/internal/domain/run"
	"github.com/jakirh/lunchboard/internal/notifications"
)

// FinalizeResult summarizes one finalizer run.
type FinalizeResult struct {
	Message   string          `json:"message"`
	Date      string          `json:"date"`
	Processed int             `json:"processed"`
	Total     int             `json:"total"`
	Counts    response.Counts `json:"counts"`
	Skipped   bool            `json:"skipped"`
}

// outcome labels for metrics.
const (
	outcomeFinalized = "finalized"
	outcomeSkipped   = "skipped"
	outcomeFailed    = "failed"
)

// Finalize runs the cutoff for today: it stops late responses and fills in a
// response for every user who never answered, using their default or "no".
// It is idempotent; rerunning after the cutoff finds nothing left to do.
// trigger is recorded in the audit trail as "schedule" or "http".
func (s *Service) Finalize(ctx context.Context, trigger string) (FinalizeResult, error) {
	started := s.now()
	today := s.Today()

	observe := func(result string, processed int) {
		if s.prom != nil {
			s.prom.ObserveFinalize(trigger, result, processed, s.now().Sub(started))
		}
	}

	if lunch.IsWeekend(today) {
		observe(outcomeSkipped, 0)
		s.log.Info("finalize skipped", "reason", "weekend", "trigger", trigger)

		return FinalizeResult{
			Message: "Weekend - no lunch tracking",
			Date:    lunch.FormatDate(today),
			Skipped: true,
		}, nil
	}

	date := lunch.FormatDate(today)

	d, err := s.lunches.GetByDate(ctx, date)
	if errors.Is(err, lunch.ErrNotFound) {
		observe(outcomeSkipped, 0)

		return FinalizeResult{}, lunch.ErrNoLunchToday
	}
	if err != nil {
		observe(outcomeFailed, 0)

		return FinalizeResult{}, err
	}

	if !d.Available {
		observe(outcomeSkipped, 0)
		s.log.Info("finalize skipped", "reason", "unavailable", "date", date, "trigger", trigger)

		return FinalizeResult{
			Message: "Lunch not available today",
			Date:    date,
			Skipped: true,
		}, nil
	}

	audit := s.startRun(ctx, date, trigger)

	result, err := s.finalizeResponses(ctx, d)
	if err != nil {
		observe(outcomeFailed, result.Processed)
		s.failRun(ctx, audit, err)

		return FinalizeResult{}, err
	}

	s.completeRun(ctx, audit, result.Processed, result.Total)
	observe(outcomeFinalized, result.Processed)

	if s.notifier != nil {
		summary := notifications.SendCutoffSummaryInput{Date: date, Counts: result.Counts}
		if nerr := s.notifier.SendCutoffSummary(ctx, summary); nerr != nil {
			s.log.Warn("cutoff summary not sent", "date", date, "error", nerr)
		}
	}

	s.log.Info("finalize done",
		"date", date,
		"trigger", trigger,
		"processed", result.Processed,
		"total", result.Total,
		"took", time.Since(started).String(),
	)

	return result, nil
}

// finalizeResponses closes the day: late responses off, then one response per
// user who has none yet.
func (s *Service) finalizeResponses(ctx context.Context, d lunch.DailyLunch) (FinalizeResult, error) {
	if err := s.lunches.SetAllowLateResponses(ctx, d.Date, false); err != nil {
		return FinalizeResult{}, err
	}

	all, users, err := s.dayState(ctx, d.Date)
	if err != nil {
		return FinalizeResult{}, err
	}

	answered := make(map[string]struct{}, len(all))
	for _, r := range all {
		answered[r.UserID] = struct{}{}
	}

	processed := 0
	for _, u := range users {
		if _, ok := answered[u.ID]; ok {
			continue
		}

		_, wasNew, err := s.responses.CreateIfAbsent(ctx, response.Response{
			UserID:   u.ID,
			UserName: u.Name,
			Date:     d.Date,
			Response: response.Answer(defaultAnswer(u)),
		})
		if err != nil {
			return FinalizeResult{Processed: processed, Total: len(users)}, err
		}

		if wasNew {
			processed++
		}
	}

	all, err = s.responses.ListByDate(ctx, d.Date)
	if err != nil {
		return FinalizeResult{Processed: processed, Total: len(users)}, err
	}

	return FinalizeResult{
		Message:   "Cutoff processed",
		Date:      d.Date,
		Processed: processed,
		Total:     len(users),
		Counts:    countAnswers(all, len(users)),
	}, nil
}

// Audit trail helpers. A nil run store or a store error never fails the run
// itself.

func (s *Service) startRun(ctx context.Context, date, trigger string) *run.Run {
	if s.runs == nil {
		return nil
	}

	r, err := s.runs.Start(ctx, run.StartRequest{Date: date, TriggeredBy: trigger})
	if err != nil {
		s.log.Warn("cutoff run not recorded", "date", date, "error", err)

		return nil
	}

	return &r
}

func (s *Service) completeRun(ctx context.Context, audit *run.Run, processed, total int) {
	if audit == nil {
		return
	}

	if err := s.runs.Complete(ctx, audit.ID, processed, total); err != nil {
		s.log.Warn("cutoff run not completed", "run_id", audit.ID, "error", err)
	}
}

func (s *Service) failRun(ctx context.Context, audit *run.Run, cause error) {
	if audit == nil {
		return
	}

	if err := s.runs.Fail(ctx, audit.ID, cause.Error()); err != nil {
		s.log.Warn("cutoff run not marked failed", "run_id", audit.ID, "error", err)
	}
}
