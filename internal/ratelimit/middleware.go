package ratelimit

import (
	"errors"
	"net/http"
	"strconv"

	"outdial-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// Require applies a limiter class to a route group. The counter key is the
// authenticated user when available, otherwise the client IP.
func Require(l *Limiter, class Class) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := auth.UserID(c.Request.Context())
		if err != nil || key == "" {
			key = c.ClientIP()
		}

		if err := l.CheckAndIncrement(c.Request.Context(), key, class); err != nil {
			var denied *DeniedError
			if errors.As(err, &denied) {
				retryAfter := int(denied.RetryAfter.Seconds() + 0.5)
				if retryAfter < 1 {
					retryAfter = 1
				}
				// Retry-After is delta-seconds per RFC 7231.
				c.Header("Retry-After", strconv.Itoa(retryAfter))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":       "too many requests",
					"retry_after": retryAfter,
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "admission check failed"})
			return
		}
		c.Next()
	}
}
