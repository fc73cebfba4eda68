package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/quizvote/internal/auth"
	"github.com/geocoder89/quizvote/internal/validation"
	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every /api route answers with. Informational outcomes
// such as "no user found" are 200 responses with a message.
type APIResponse struct {
	Status    int         `json:"status"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, APIResponse{Status: status, Message: message})
}

func RespondData(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, APIResponse{Status: http.StatusOK, Data: data})
}

func RespondFailure(ctx *gin.Context, status int, message string, details interface{}) {
	ctx.JSON(status, APIResponse{
		Status:    status,
		Message:   message,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondFailure(ctx, http.StatusBadRequest, message, details)
}

// RespondError maps an error from the service layer onto the HTTP contract: auth
// failures keep their own codes, everything else (validation and storage alike) is a
// 400 carrying the error message.
func RespondError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)

	var verr *validation.Error

	switch {
	case errors.As(err, &verr):
		RespondBadRequest(ctx, verr.Error(), gin.H{"fields": verr.Fields})
	case errors.Is(err, auth.ErrMissingToken):
		RespondFailure(ctx, http.StatusForbidden, "missing token", nil)
	case errors.Is(err, auth.ErrInvalidToken):
		RespondFailure(ctx, http.StatusUnauthorized, "invalid token", nil)
	default:
		RespondBadRequest(ctx, err.Error(), nil)
	}
}
