package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/quizvote/internal/config"
	"github.com/geocoder89/quizvote/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, creds user.Credentials) (user.User, error)
	Login(ctx context.Context, creds user.Credentials) (token string, found bool, err error)
}

type AuthHandler struct {
	accounts AccountService
}

func NewAuthHandler(accounts AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// AddUser handles POST /api/add-user
func (h *AuthHandler) AddUser(ctx *gin.Context) {
	var req user.Credentials

	if !BindJSON(ctx, &req) {
		return
	}

	// bcrypt plus one insert
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.accounts.Register(cctx, req); err != nil {
		RespondError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "user added succesfully")
}

// Login handles POST /api/login. Unknown credentials are a 200 with a message.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.Credentials

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	token, found, err := h.accounts.Login(cctx, req)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	if !found {
		RespondMessage(ctx, http.StatusOK, "no user found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": token,
	})
}
