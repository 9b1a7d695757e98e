package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/carmarket/observability"
)

// Health reports service health. It answers 503 when any component is down.
func Health(serviceName, version string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := observability.CheckService(c.Request.Context(), serviceName, version, checkers...)

		httpStatus := http.StatusOK
		if report.Status == observability.HealthStatusDown {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     report.Status,
			"service":    report.Service,
			"version":    report.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": report.Components,
		})
	}
}
