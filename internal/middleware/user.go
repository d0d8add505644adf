package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserHeader is the request header naming the acting user. Authentication
// happens upstream in the command layer; the backend trusts this value.
const UserHeader = "X-User-ID"

// RequireUser creates a Gin middleware handler that extracts the acting user
// from the request header and stores it in the request context.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		userID := c.GetHeader(UserHeader)
		if userID == "" {
			logger.Warn("Acting user header missing", slog.String("header", UserHeader))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": UserHeader + " header required"})
			return
		}

		// Store the user ID and a user-enriched logger in the context
		ctxWithUser := context.WithValue(c.Request.Context(), userIDKey, userID)
		enrichedLogger := logger.With(slog.String("user_id", userID))
		c.Request = c.Request.WithContext(AddLoggerToCtx(ctxWithUser, enrichedLogger))

		c.Next()
	}
}
