package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "barbearia/pkg/errors"
)

// ErrorHandler maps errors attached to the context onto the wire format.
// Client-caused errors keep their message; infrastructure errors are logged
// in full and answered with a generic message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		lastErr := c.Errors.Last().Err

		log.Error().
			Err(lastErr).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("request error")

		status := http.StatusInternalServerError
		message := "internal server error"

		var appErr *apperrors.AppError
		if errors.As(lastErr, &appErr) {
			status = appErr.StatusCode()
			if status < http.StatusInternalServerError {
				message = appErr.Message
			}
		}

		c.JSON(status, gin.H{"error": message})
	}
}
