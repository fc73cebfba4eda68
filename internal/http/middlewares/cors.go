package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods  = "GET, POST, OPTIONS"
	corsAllowHeaders  = "Authorization, Content-Type, If-None-Match, X-Request-Id"
	corsExposeHeaders = "ETag, X-Request-Id"
	corsMaxAge        = "600"
)

type originPolicy struct {
	any    bool
	listed map[string]struct{}
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{listed: map[string]struct{}{}}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			p.any = true
		default:
			p.listed[o] = struct{}{}
		}
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or "" when the
// origin is not allowed. Listed origins are echoed back even when "*" is configured.
func (p originPolicy) allowOrigin(origin string) string {
	if _, ok := p.listed[origin]; ok {
		return origin
	}
	if p.any {
		return "*"
	}
	return ""
}

// CORSMiddleware answers preflights itself: 204 for an allowed origin, 403 otherwise.
// Simple requests from other origins pass through without CORS headers.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	policy := newOriginPolicy(allowedOrigins)

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		preflight := ctx.Request.Method == http.MethodOptions

		if origin == "" {
			if preflight {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
			ctx.Next()
			return
		}

		allow := policy.allowOrigin(origin)
		h := ctx.Writer.Header()
		if allow != "*" {
			h.Add("Vary", "Origin")
		}

		if allow == "" {
			if preflight {
				ctx.AbortWithStatus(http.StatusForbidden)
				return
			}
			ctx.Next()
			return
		}

		h.Set("Access-Control-Allow-Origin", allow)
		h.Set("Access-Control-Expose-Headers", corsExposeHeaders)

		if preflight {
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
