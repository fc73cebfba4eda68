package middlewares

import (
	"errors"
	"net/http"

	"github.com/geocoder89/quizvote/internal/actorctx"
	"github.com/geocoder89/quizvote/internal/auth"
	"github.com/gin-gonic/gin"
)

const userIDKey = "auth.userID"

type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// RequireAuth takes the whole Authorization header as the token, with no scheme
// prefix. No header answers 403 and a token that fails verification answers 401.
func RequireAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tokens.VerifyAccessToken(c.GetHeader("Authorization"))
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			abortStatus(c, http.StatusForbidden, "missing token")
			return
		case err != nil:
			abortStatus(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// UserIDFromContext returns the id RequireAuth stored for this request.
func UserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}

func abortStatus(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"status": status, "message": msg})
}
