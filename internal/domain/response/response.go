package response

import (
	"errors"
	"time"
)

type Answer string

const (
	Yes Answer = "yes"
	No  Answer = "no"
)

func (a Answer) IsValid() bool {
	return a == Yes || a == No
}

// Response is one user's answer for one date, keyed by (userId, date).
// UserName is denormalized from the User record at write time for display.
type Response struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Date      string    `json:"date"`
	Response  Answer    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("response not found")

type SubmitRequest struct {
	Response     string `json:"response" binding:"required,oneof=yes no"`
	SetAsDefault bool   `json:"setAsDefault"`
}

type BulkResolveRequest struct {
	Response string `json:"response" binding:"required,oneof=yes no"`
}

// Counts is the daily headcount summary. Unanswered is plain arithmetic
// (total users minus answers) and can go negative when stale responses
// outlive their user.
type Counts struct {
	Yes        int `json:"yes"`
	No         int `json:"no"`
	Unanswered int `json:"unanswered"`
}
