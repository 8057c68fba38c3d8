package notifications

import (
	"context"

	"github.com/jakirh/lunchboard/internal/domain/response"
)

type SendCutoffSummaryInput struct {
	Date   string
	Counts response.Counts
}

type Notifier interface {
	SendCutoffSummary(ctx context.Context, input SendCutoffSummaryInput) error
}
