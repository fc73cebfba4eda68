package middlewares

import (
	"log/slog"
	"time"

	"github.com/geocoder89/quizvote/internal/actorctx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128

	// CtxRequestID is the gin context key holding the request id.
	CtxRequestID = "request_id"
)

// RequestID reuses a client supplied X-Request-Id (if short enough) or mints one, and
// exposes it on the gin context, the request context and the response.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		ctx.Writer.Header().Set(requestIDHeader, id)
		ctx.Set(CtxRequestID, id)
		ctx.Request = ctx.Request.WithContext(actorctx.WithRequestID(ctx.Request.Context(), id))

		ctx.Next()
	}
}

// RequestLogger writes one http_request record per request: error level for 5xx, warn
// for requests slower than slow (when slow > 0), info otherwise.
func RequestLogger(log *slog.Logger, slow time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		lat := time.Since(start)
		status := ctx.Writer.Status()

		attrs := []slog.Attr{
			slog.String("method", ctx.Request.Method),
			slog.String("route", route),
			slog.String("path", ctx.Request.URL.Path),
			slog.Int("status", status),
			slog.Int64("latency_ms", lat.Milliseconds()),
			slog.Int("bytes_out", ctx.Writer.Size()),
			slog.String("client_ip", ctx.ClientIP()),
		}
		if len(ctx.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", ctx.Errors.String()))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case slow > 0 && lat > slow:
			level = slog.LevelWarn
		}

		// request_id and user_id come from the request context via the log handler
		log.LogAttrs(ctx.Request.Context(), level, "http_request", attrs...)
	}
}
