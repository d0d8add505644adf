package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// RateLimit throttles requests per client IP against lim. Exceeding the
// rate answers 429 without invoking the handler chain.
func RateLimit(lim *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		logger := GetLoggerFromCtx(c.Request.Context())

		lctx, err := lim.Get(c.Request.Context(), ip)
		if err != nil {
			logger.Error("Rate limit lookup failed", slog.String("ip", ip), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if lctx.Reached {
			logger.Warn("Rate limit exceeded",
				slog.String("ip", ip),
				slog.Int64("limit", lctx.Limit),
				slog.Int64("remaining", lctx.Remaining))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}

		c.Next()
	}
}
