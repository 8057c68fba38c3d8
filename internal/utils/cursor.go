package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

type RunCursor struct {
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
}

func EncodeRunCursor(updatedAt time.Time, id string) (string, error) {
	b, err := json.Marshal(RunCursor{UpdatedAt: updatedAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeRunCursor(cursor string) (RunCursor, error) {
	if cursor == "" {
		return RunCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return RunCursor{}, err
	}

	var c RunCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return RunCursor{}, err
	}
	if c.ID == "" || c.UpdatedAt.IsZero() {
		return RunCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
