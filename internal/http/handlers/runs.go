package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakirh/lunchboard/internal/domain/run"
	"github.com/jakirh/lunchboard/internal/utils"
)

type RunsReader interface {
	GetByID(ctx context.Context, id string) (run.Run, error)
	LatestForDate(ctx context.Context, date string) (run.Run, error)
	ListCursor(ctx context.Context, limit int, afterUpdatedAt time.Time, afterID string) ([]run.Run, *string, bool, error)
}

// RunsHandler exposes the finalizer audit trail to admins.
type RunsHandler struct {
	runs RunsReader
}

func NewRunsHandler(runs RunsReader) *RunsHandler {
	return &RunsHandler{runs: runs}
}

func (h *RunsHandler) List(ctx *gin.Context) {
	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			RespondBadRequest(ctx, "limit must be an integer between 1 and 100", nil)
			return
		}
		limit = n
	}

	var afterUpdatedAt time.Time
	var afterID string

	if raw := ctx.Query("cursor"); raw != "" {
		cur, err := utils.DecodeRunCursor(raw)
		if err != nil {
			RespondBadRequest(ctx, "invalid cursor", nil)
			return
		}
		afterUpdatedAt = cur.UpdatedAt
		afterID = cur.ID
	}

	cctx, cancel := requestCtx(ctx, 5*time.Second)
	defer cancel()

	// date filter short-circuits to the latest run for that day
	if date := ctx.Query("date"); date != "" {
		latest, err := h.runs.LatestForDate(cctx, date)
		if errors.Is(err, run.ErrNotFound) {
			ctx.JSON(http.StatusOK, gin.H{"runs": []run.Run{}, "hasMore": false})
			return
		}
		if err != nil {
			RespondInternal(ctx, "Could not list runs")
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"runs": []run.Run{latest}, "hasMore": false})
		return
	}

	runs, next, hasMore, err := h.runs.ListCursor(cctx, limit, afterUpdatedAt, afterID)
	if err != nil {
		RespondInternal(ctx, "Could not list runs")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"runs":       runs,
		"nextCursor": next,
		"hasMore":    hasMore,
	})
}

func (h *RunsHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "id must be a UUID", nil)
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	r, err := h.runs.GetByID(cctx, id)
	if errors.Is(err, run.ErrNotFound) {
		RespondNotFound(ctx, "Run not found")
		return
	}
	if err != nil {
		RespondInternal(ctx, "Could not load run")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"run": r})
}
