package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakirh/lunchboard/internal/domain/response"
	"github.com/jakirh/lunchboard/internal/services"
)

type ResponsesHandler struct {
	svc *services.Service
}

func NewResponsesHandler(svc *services.Service) *ResponsesHandler {
	return &ResponsesHandler{svc: svc}
}

// Submit records the caller's yes/no for today.
func (h *ResponsesHandler) Submit(ctx *gin.Context) {
	var req response.SubmitRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, 5*time.Second)
	defer cancel()

	saved, err := h.svc.Submit(cctx, response.Answer(req.Response), req.SetAsDefault)

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"response": saved})
}
