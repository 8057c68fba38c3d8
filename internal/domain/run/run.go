package run

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

var ErrNotFound = errors.New("cutoff run not found")

// Run is one execution of the cutoff finalizer, recorded for auditing.
// Several runs may exist for one date (a retry after partial failure); the
// latest one reflects the final outcome.
type Run struct {
	ID          string     `json:"id"`
	Date        string     `json:"date"`
	Status      Status     `json:"status"`
	Processed   int        `json:"processed"`
	Total       int        `json:"total"`
	TriggeredBy string     `json:"triggeredBy"` // "schedule" | "http"
	LastError   *string    `json:"lastError,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type StartRequest struct {
	Date        string
	TriggeredBy string
}

func New(req StartRequest) Run {
	now := time.Now().UTC()

	trigger := req.TriggeredBy

	if trigger == "" {
		trigger = "http"
	}

	return Run{
		ID:          uuid.NewString(),
		Date:        req.Date,
		Status:      StatusPending,
		TriggeredBy: trigger,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
