package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimit caps the request rate across all clients with a single token
// bucket. Rejected requests are logged with their request id and answered
// with the same error envelope the rest of the API uses.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(limit, burst)

	return func(c *gin.Context) {
		if limiter.Allow() {
			c.Next()
			return
		}

		log.Warn().
			Str("request_id", c.GetString(ContextRequestID)).
			Str("client_ip", c.ClientIP()).
			Str("path", c.Request.URL.Path).
			Msg("request rate limited")

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "too many requests, try again shortly",
		})
	}
}
