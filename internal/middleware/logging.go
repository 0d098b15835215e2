package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every HTTP request with method, path, status, the
// authenticated user (if any) and duration.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"user_id", GetUserID(c),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			slog.Error("HTTP error", attrs...)
		case status >= 400:
			slog.Warn("HTTP error", attrs...)
		default:
			slog.Info("HTTP ok", attrs...)
		}
	}
}
