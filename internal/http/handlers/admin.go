package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/domain/response"
	"github.com/jakirh/lunchboard/internal/services"
)

type AdminHandler struct {
	svc *services.Service
}

func NewAdminHandler(svc *services.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) SetAvailability(ctx *gin.Context) {
	var req lunch.SetAvailabilityRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, 5*time.Second)
	defer cancel()

	updated, err := h.svc.SetAvailability(cctx, req)

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"lunch": updated})
}

func (h *AdminHandler) SetLateResponses(ctx *gin.Context) {
	var req lunch.SetLateResponsesRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, 5*time.Second)
	defer cancel()

	updated, err := h.svc.SetLateResponses(cctx, *req.Allow)

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"lunch": updated})
}

func (h *AdminHandler) BulkResolve(ctx *gin.Context) {
	var req response.BulkResolveRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, 10*time.Second)
	defer cancel()

	result, err := h.svc.BulkResolve(cctx, response.Answer(req.Response))

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}
