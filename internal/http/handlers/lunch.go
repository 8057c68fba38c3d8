package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/services"
)

type LunchHandler struct {
	svc *services.Service
}

func NewLunchHandler(svc *services.Service) *LunchHandler {
	return &LunchHandler{svc: svc}
}

// Today returns the reconciled snapshot for the current day. Weekends come
// back 200 with a nil lunch so clients render the "no tracking" state.
func (h *LunchHandler) Today(ctx *gin.Context) {
	cctx, cancel := requestCtx(ctx, 5*time.Second)
	defer cancel()

	snap, err := h.svc.Reconcile(cctx)

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, snap)
}

// respondServiceError maps the service's sentinel errors onto HTTP statuses.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, lunch.ErrWeekend):
		RespondConflict(ctx, "weekend", "No lunch tracking on weekends.")

	case errors.Is(err, lunch.ErrNoLunchToday), errors.Is(err, lunch.ErrNotFound):
		RespondNotFound(ctx, "No lunch record for today")

	case errors.Is(err, lunch.ErrCutoffPassed):
		RespondConflict(ctx, "cutoff_passed", "The response cutoff has passed.")

	case errors.Is(err, lunch.ErrForbidden):
		RespondForbidden(ctx, "Admin access required")

	case errors.Is(err, services.ErrInvalidAnswer):
		RespondBadRequest(ctx, "Response must be yes or no", nil)

	default:
		RespondInternal(ctx, "Something went wrong")
	}
}
