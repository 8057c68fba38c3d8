package user

import (
	"errors"
	"time"
)

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never expose hash in JSON
	Name         string `json:"name"`
	IsAdmin      bool   `json:"isAdmin"`
	// nil when the user has no standing preference
	DefaultResponse        *string   `json:"defaultResponse,omitempty"`
	NotificationPreference string    `json:"notificationPreference"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

// notification preferences mirror what the client offers; the lunch core
// never reads them, they are a standing profile setting.
const (
	NotifyNone    = "none"
	NotifyEmail   = "email"
	NotifyWebPush = "webpush"
)

func ValidNotificationPreference(p string) bool {
	switch p {
	case NotifyNone, NotifyEmail, NotifyWebPush:
		return true
	}

	return false
}

type UpdateProfileRequest struct {
	Name                   *string `json:"name" binding:"omitempty,min=1,max=120"`
	DefaultResponse        *string `json:"defaultResponse" binding:"omitempty,oneof=yes no"`
	NotificationPreference *string `json:"notificationPreference" binding:"omitempty,oneof=none email webpush"`
}
