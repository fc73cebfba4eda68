package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes rejects bodies that announce more than max bytes with a 413 and caps
// the rest, so a body that lies about its length fails to bind with a 400.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if max <= 0 || ctx.Request.Body == nil {
			ctx.Next()
			return
		}

		if ctx.Request.ContentLength > max {
			abortStatus(ctx, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)
		ctx.Next()
	}
}
