package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jakirh/lunchboard/internal/domain/user"
)

// UsersRepo is the map-backed variant used by tests and by local runs
// without Postgres. Method sets mirror the postgres repo.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lowered := strings.ToLower(email)
	for _, u := range r.items {
		if u.Email == lowered {
			return user.User{}, user.ErrEmailAlreadyUsed
		}
	}

	now := time.Now()
	u := user.User{
		ID:                     uuid.NewString(),
		Email:                  lowered,
		PasswordHash:           passwordHash,
		Name:                   name,
		IsAdmin:                false,
		NotificationPreference: user.NotifyNone,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lowered := strings.ToLower(email)
	for _, u := range r.items {
		if u.Email == lowered {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}

	return out, nil
}

func (r *UsersRepo) SetDefaultResponse(ctx context.Context, id string, defaultResponse string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}

	u.DefaultResponse = &defaultResponse
	u.UpdatedAt = time.Now()
	r.items[id] = u

	return nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.DefaultResponse != nil {
		u.DefaultResponse = req.DefaultResponse
	}
	if req.NotificationPreference != nil {
		u.NotificationPreference = *req.NotificationPreference
	}

	u.UpdatedAt = time.Now()
	r.items[id] = u

	return u, nil
}

// Seed inserts a user as-is. Test helper.
func (r *UsersRepo) Seed(u user.User) user.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
		u.UpdatedAt = u.CreatedAt
	}
	r.items[u.ID] = u

	return u
}
