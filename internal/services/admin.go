package services

import (
	"context"
	"strings"

	"github.com/jakirh/lunchboard/internal/actorctx"
	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/domain/response"
)

// requireAdmin enforces authorization inside the service itself, so admin
// mutations stay safe even if a caller bypasses router middleware.
func requireAdmin(ctx context.Context) (actorctx.Actor, error) {
	actor, ok := actorctx.From(ctx)
	if !ok || !actor.IsAdmin {
		return actorctx.Actor{}, lunch.ErrForbidden
	}

	return actor, nil
}

// SetAvailability opens or closes today's lunch. A nil reason leaves the
// stored reason untouched; a provided blank reason becomes "no reason".
func (s *Service) SetAvailability(ctx context.Context, req lunch.SetAvailabilityRequest) (lunch.DailyLunch, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return lunch.DailyLunch{}, err
	}

	d, err := s.EnsureToday(ctx)
	if err != nil {
		return lunch.DailyLunch{}, err
	}

	writeReason := req.Reason != nil

	var reason *string
	if writeReason {
		trimmed := strings.TrimSpace(*req.Reason)
		if trimmed == "" {
			trimmed = "no reason"
		}
		reason = &trimmed
	}

	updated, err := s.lunches.SetAvailability(ctx, d.Date, req.Available, reason, writeReason)
	if err != nil {
		return lunch.DailyLunch{}, err
	}

	s.log.Info("availability changed", "date", d.Date, "available", req.Available, "actor", actor.UserID)

	return updated, nil
}

// SetLateResponses toggles whether submissions are accepted after the cutoff.
// It never creates today's record: toggling the flag on a day nobody has
// opened yet is a mistake, so an absent record surfaces as ErrNotFound.
func (s *Service) SetLateResponses(ctx context.Context, allow bool) (lunch.DailyLunch, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return lunch.DailyLunch{}, err
	}

	d, err := s.lunches.GetByDate(ctx, lunch.FormatDate(s.Today()))
	if err != nil {
		return lunch.DailyLunch{}, err
	}

	if err := s.lunches.SetAllowLateResponses(ctx, d.Date, allow); err != nil {
		return lunch.DailyLunch{}, err
	}

	d, err = s.lunches.GetByDate(ctx, d.Date)
	if err != nil {
		return lunch.DailyLunch{}, err
	}

	s.log.Info("late responses toggled", "date", d.Date, "allow", allow, "actor", actor.UserID)

	return d, nil
}

// BulkResolveResult reports how many users a bulk resolve touched.
type BulkResolveResult struct {
	Updated int             `json:"updated"`
	Total   int             `json:"total"`
	Counts  response.Counts `json:"counts"`
}

// BulkResolve assigns answer to every user who has no response today, and
// makes it their default for future days. Users who already answered are
// left alone.
func (s *Service) BulkResolve(ctx context.Context, answer response.Answer) (BulkResolveResult, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return BulkResolveResult{}, err
	}

	if !answer.IsValid() {
		return BulkResolveResult{}, ErrInvalidAnswer
	}

	d, err := s.EnsureToday(ctx)
	if err != nil {
		return BulkResolveResult{}, err
	}

	all, users, err := s.dayState(ctx, d.Date)
	if err != nil {
		return BulkResolveResult{}, err
	}

	answered := make(map[string]struct{}, len(all))
	for _, r := range all {
		answered[r.UserID] = struct{}{}
	}

	updated := 0
	for _, u := range users {
		if _, ok := answered[u.ID]; ok {
			continue
		}

		if err := s.users.SetDefaultResponse(ctx, u.ID, string(answer)); err != nil {
			return BulkResolveResult{}, err
		}

		if _, _, err := s.responses.CreateIfAbsent(ctx, response.Response{
			UserID:   u.ID,
			UserName: u.Name,
			Date:     d.Date,
			Response: answer,
		}); err != nil {
			return BulkResolveResult{}, err
		}

		updated++
	}

	all, err = s.responses.ListByDate(ctx, d.Date)
	if err != nil {
		return BulkResolveResult{}, err
	}

	s.log.Info("bulk resolve applied", "date", d.Date, "response", answer, "updated", updated, "actor", actor.UserID)

	return BulkResolveResult{
		Updated: updated,
		Total:   len(users),
		Counts:  countAnswers(all, len(users)),
	}, nil
}
