package services

import (
	"context"
	"errors"

	"github.com/jakirh/lunchboard/internal/actorctx"
	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/domain/response"
	"github.com/jakirh/lunchboard/internal/domain/user"
)

// Snapshot is everything a client needs to render the day: the lunch record,
// the calling user's own response, the full response list and the headcount.
// Lunch is nil on weekends.
type Snapshot struct {
	Lunch        *lunch.DailyLunch   `json:"lunch"`
	UserResponse *response.Response  `json:"userResponse,omitempty"`
	Responses    []response.Response `json:"responses"`
	Counts       response.Counts     `json:"counts"`
}

// Reconcile brings today's state up to date for the calling user and returns
// a snapshot of it. It creates today's lunch record on first access, seeds
// the caller's response from their default answer, and recomputes counts.
func (s *Service) Reconcile(ctx context.Context) (Snapshot, error) {
	actor, ok := actorctx.From(ctx)
	if !ok {
		return Snapshot{}, lunch.ErrForbidden
	}

	d, err := s.EnsureToday(ctx)
	if errors.Is(err, lunch.ErrWeekend) {
		return Snapshot{Responses: []response.Response{}}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}

	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return Snapshot{}, err
	}

	mine, err := s.seedResponse(ctx, u, d.Date)
	if err != nil {
		return Snapshot{}, err
	}

	all, users, err := s.dayState(ctx, d.Date)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Lunch:        &d,
		UserResponse: &mine,
		Responses:    all,
		Counts:       countAnswers(all, len(users)),
	}, nil
}

// seedResponse makes sure the user has a response row for date, creating one
// from their default answer when absent. The existing row wins a race.
func (s *Service) seedResponse(ctx context.Context, u user.User, date string) (response.Response, error) {
	seed := response.Response{
		UserID:   u.ID,
		UserName: u.Name,
		Date:     date,
		Response: response.Answer(defaultAnswer(u)),
	}

	created, wasNew, err := s.responses.CreateIfAbsent(ctx, seed)
	if err != nil {
		return response.Response{}, err
	}

	if wasNew {
		s.log.Info("seeded response from default", "user_id", u.ID, "date", date, "response", created.Response)
	}

	return created, nil
}

// dayState loads the response list and user roster for a date, backfilling
// display names for responses written before the user renamed themselves.
func (s *Service) dayState(ctx context.Context, date string) ([]response.Response, []user.User, error) {
	all, err := s.responses.ListByDate(ctx, date)
	if err != nil {
		return nil, nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	for i := range all {
		if name, ok := names[all[i].UserID]; ok && name != "" {
			all[i].UserName = name
		}
	}

	return all, users, nil
}

func countAnswers(all []response.Response, totalUsers int) response.Counts {
	var c response.Counts

	for _, r := range all {
		switch r.Response {
		case response.Yes:
			c.Yes++
		case response.No:
			c.No++
		}
	}

	c.Unanswered = totalUsers - c.Yes - c.No

	return c
}
