package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jakirh/lunchboard/internal/domain/lunch"
)

type LunchRepo struct {
	mu    sync.RWMutex
	items map[string]lunch.DailyLunch // keyed by date
}

func NewLunchRepo() *LunchRepo {
	return &LunchRepo{
		items: make(map[string]lunch.DailyLunch),
	}
}

func (r *LunchRepo) GetByDate(ctx context.Context, date string) (lunch.DailyLunch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[date]
	if !ok {
		return lunch.DailyLunch{}, lunch.ErrNotFound
	}

	return d, nil
}

func (r *LunchRepo) CreateIfAbsent(ctx context.Context, d lunch.DailyLunch) (lunch.DailyLunch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[d.Date]; ok {
		return existing, nil
	}

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	r.items[d.Date] = d

	return d, nil
}

func (r *LunchRepo) SetAvailability(ctx context.Context, date string, available bool, reason *string, writeReason bool) (lunch.DailyLunch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.items[date]
	if !ok {
		return lunch.DailyLunch{}, lunch.ErrNotFound
	}

	d.Available = available
	if writeReason {
		d.UnavailableReason = reason
	}
	d.UpdatedAt = time.Now()
	r.items[date] = d

	return d, nil
}

func (r *LunchRepo) SetAllowLateResponses(ctx context.Context, date string, allow bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.items[date]
	if !ok {
		return lunch.ErrNotFound
	}

	d.AllowLateResponses = allow
	d.UpdatedAt = time.Now()
	r.items[date] = d

	return nil
}

// Seed inserts a record as-is. Test helper.
func (r *LunchRepo) Seed(d lunch.DailyLunch) lunch.DailyLunch {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
		d.UpdatedAt = d.CreatedAt
	}
	r.items[d.Date] = d

	return d
}
