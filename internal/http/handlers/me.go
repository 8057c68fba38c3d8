package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakirh/lunchboard/internal/domain/user"
	"github.com/jakirh/lunchboard/internal/http/middlewares"
)

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error)
}

type MeHandler struct {
	users ProfileStore
}

func NewMeHandler(users ProfileStore) *MeHandler {
	return &MeHandler{users: users}
}

func (h *MeHandler) Get(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if errors.Is(err, user.ErrNotFound) {
		RespondNotFound(ctx, "User not found")
		return
	}
	if err != nil {
		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

// Update changes name, default answer or notification preference. Absent
// fields are left as they are.
func (h *MeHandler) Update(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	u, err := h.users.UpdateProfile(cctx, id, req)
	if errors.Is(err, user.ErrNotFound) {
		RespondNotFound(ctx, "User not found")
		return
	}
	if err != nil {
		RespondInternal(ctx, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}
