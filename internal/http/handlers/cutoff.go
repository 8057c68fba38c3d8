package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakirh/lunchboard/internal/actorctx"
	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/http/middlewares"
	"github.com/jakirh/lunchboard/internal/services"
)

// CutoffHandler lets an external cron (or an admin) trigger the finalizer
// over HTTP. Cron callers authenticate with a bearer token from config
// instead of a user JWT.
type CutoffHandler struct {
	svc       *services.Service
	cronToken string
}

func NewCutoffHandler(svc *services.Service, cronToken string) *CutoffHandler {
	return &CutoffHandler{svc: svc, cronToken: cronToken}
}

func (h *CutoffHandler) Trigger(ctx *gin.Context) {
	cctx, cancel := requestCtx(ctx, 30*time.Second)
	defer cancel()

	if !h.authorized(ctx) {
		RespondUnAuthorized(ctx, "unauthorized", "Cron token or admin access required")
		return
	}

	// a valid cron token acts with system rights
	runCtx := cctx
	if _, ok := actorctx.From(cctx); !ok {
		runCtx = actorctx.System(cctx)
	}

	result, err := h.svc.Finalize(runCtx, "http")

	// cron callers read flat bodies, not the API error envelope
	if err != nil {
		if errors.Is(err, lunch.ErrNoLunchToday) || errors.Is(err, lunch.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "No lunch record found for today"})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Cutoff processing failed", "error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (h *CutoffHandler) authorized(ctx *gin.Context) bool {
	// admins may trigger manually through their normal session
	if middlewares.IsAdminFromContext(ctx) {
		return true
	}

	if h.cronToken == "" {
		return false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer"))

	return subtle.ConstantTimeCompare([]byte(raw), []byte(h.cronToken)) == 1
}
