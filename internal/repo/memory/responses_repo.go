package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jakirh/lunchboard/internal/domain/response"
)

type responseKey struct {
	userID string
	date   string
}

type ResponsesRepo struct {
	mu    sync.RWMutex
	items map[responseKey]response.Response
}

func NewResponsesRepo() *ResponsesRepo {
	return &ResponsesRepo{
		items: make(map[responseKey]response.Response),
	}
}

func (r *ResponsesRepo) Get(ctx context.Context, userID, date string) (response.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, ok := r.items[responseKey{userID, date}]
	if !ok {
		return response.Response{}, response.ErrNotFound
	}

	return resp, nil
}

func (r *ResponsesRepo) CreateIfAbsent(ctx context.Context, resp response.Response) (response.Response, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := responseKey{resp.UserID, resp.Date}
	if existing, ok := r.items[key]; ok {
		return existing, false, nil
	}

	now := time.Now()
	resp.CreatedAt = now
	resp.UpdatedAt = now
	r.items[key] = resp

	return resp, true, nil
}

func (r *ResponsesRepo) Upsert(ctx context.Context, resp response.Response) (response.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := responseKey{resp.UserID, resp.Date}
	now := time.Now()

	if existing, ok := r.items[key]; ok {
		existing.Response = resp.Response
		existing.UserName = resp.UserName
		existing.UpdatedAt = now
		r.items[key] = existing

		return existing, nil
	}

	resp.CreatedAt = now
	resp.UpdatedAt = now
	r.items[key] = resp

	return resp, nil
}

func (r *ResponsesRepo) ListByDate(ctx context.Context, date string) ([]response.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]response.Response, 0, 8)
	for key, resp := range r.items {
		if key.date == date {
			out = append(out, resp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	return out, nil
}
