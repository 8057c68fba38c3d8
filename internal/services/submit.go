package services

import (
	"context"
	"errors"

	"github.com/jakirh/lunchboard/internal/actorctx"
	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/domain/response"
)

var ErrInvalidAnswer = errors.New("response must be yes or no")

// Submit records the calling user's answer for today. After the cutoff it is
// rejected unless the actor is an admin or late responses were re-opened.
// With setAsDefault the answer also becomes the user's seed for future days.
func (s *Service) Submit(ctx context.Context, answer response.Answer, setAsDefault bool) (response.Response, error) {
	actor, ok := actorctx.From(ctx)
	if !ok {
		return response.Response{}, lunch.ErrForbidden
	}

	if !answer.IsValid() {
		return response.Response{}, ErrInvalidAnswer
	}

	d, err := s.EnsureToday(ctx)
	if err != nil {
		return response.Response{}, err
	}

	if d.PastCutoff(s.Today()) && !d.AllowLateResponses && !actor.IsAdmin {
		return response.Response{}, lunch.ErrCutoffPassed
	}

	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return response.Response{}, err
	}

	saved, err := s.responses.Upsert(ctx, response.Response{
		UserID:   u.ID,
		UserName: u.Name,
		Date:     d.Date,
		Response: answer,
	})
	if err != nil {
		return response.Response{}, err
	}

	if setAsDefault {
		if err := s.users.SetDefaultResponse(ctx, u.ID, string(answer)); err != nil {
			return response.Response{}, err
		}
	}

	s.log.Info("response submitted", "user_id", u.ID, "date", d.Date, "response", answer, "default_updated", setAsDefault)

	return saved, nil
}
