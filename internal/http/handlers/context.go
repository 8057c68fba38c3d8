package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// requestCtx derives a timeout context from the request context, so the
// authenticated actor and trace span stay attached.
func requestCtx(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), d)
}
