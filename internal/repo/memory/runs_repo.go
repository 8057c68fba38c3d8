package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jakirh/lunchboard/internal/domain/run"
)

type RunsRepo struct {
	mu    sync.RWMutex
	items map[string]run.Run
}

func NewRunsRepo() *RunsRepo {
	return &RunsRepo{
		items: make(map[string]run.Run),
	}
}

func (r *RunsRepo) Start(ctx context.Context, req run.StartRequest) (run.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := run.New(req)
	r.items[rec.ID] = rec

	return rec, nil
}

func (r *RunsRepo) Complete(ctx context.Context, id string, processed, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[id]
	if !ok {
		return run.ErrNotFound
	}

	now := time.Now()
	rec.Status = run.StatusDone
	rec.Processed = processed
	rec.Total = total
	rec.FinishedAt = &now
	rec.UpdatedAt = now
	r.items[id] = rec

	return nil
}

func (r *RunsRepo) Fail(ctx context.Context, id string, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[id]
	if !ok {
		return run.ErrNotFound
	}

	now := time.Now()
	rec.Status = run.StatusFailed
	rec.LastError = &errMsg
	rec.FinishedAt = &now
	rec.UpdatedAt = now
	r.items[id] = rec

	return nil
}

func (r *RunsRepo) GetByID(ctx context.Context, id string) (run.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		return run.Run{}, run.ErrNotFound
	}

	return rec, nil
}

func (r *RunsRepo) All() []run.Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]run.Run, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, rec)
	}

	return out
}
