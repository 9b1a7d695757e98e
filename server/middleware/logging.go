package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/carmarket/logger"
	"github.com/kbukum/carmarket/server/boundary"
)

var quietPaths = map[string]bool{
	"/health":     true,
	"/api/health": true,
	"/metrics":    true,
}

// RequestLogger logs every request with method, path, status and duration.
// Health checks are skipped. A nil log uses the global logger.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := c.Writer.Status()
		fields := logger.Fields(
			logger.FieldMethod, c.Request.Method,
			logger.FieldPath, c.Request.URL.Path,
			logger.FieldStatus, status,
			logger.FieldDuration, duration.Milliseconds(),
			"client", c.ClientIP(),
		)
		if id := c.Writer.Header().Get(boundary.HeaderErrorID); id != "" {
			fields[logger.FieldErrorID] = id
		}
		if duration > 500*time.Millisecond {
			fields["slow"] = true
		}

		l := log
		if l == nil {
			l = logger.GetGlobalLogger()
		}
		logByStatus(l.WithContext(c.Request.Context()), fields, status)
	}
}

// logByStatus logs at error for 5xx, warn for 4xx and debug otherwise.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
