// Package cached wraps repos with a short-TTL in-process cache so the
// 60s client poll does not hammer the users table on every snapshot.
package cached

import (
	"context"

	"github.com/jakirh/lunchboard/internal/cache"
	"github.com/jakirh/lunchboard/internal/domain/user"
	"github.com/jakirh/lunchboard/internal/services"
)

const usersListKey = "users:v1:list"

type UsersRepo struct {
	next  services.UserStore
	cache *cache.Cache
}

func NewUsersRepo(next services.UserStore, c *cache.Cache) *UsersRepo {
	return &UsersRepo{next: next, cache: c}
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.next.GetByID(ctx, id)
}

// List serves the whole user list from cache within the TTL. Profile edits
// made through other paths can be stale for at most one TTL window, which
// only delays a name/default change showing up in the daily counts.
func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	if v, ok := r.cache.Get(usersListKey); ok {
		if users, ok := v.([]user.User); ok {
			return users, nil
		}
	}

	users, err := r.next.List(ctx)

	if err != nil {
		return nil, err
	}

	r.cache.Set(usersListKey, users)

	return users, nil
}

func (r *UsersRepo) SetDefaultResponse(ctx context.Context, userID string, answer string) error {
	err := r.next.SetDefaultResponse(ctx, userID, answer)

	if err != nil {
		return err
	}

	r.cache.Delete(usersListKey)

	return nil
}
