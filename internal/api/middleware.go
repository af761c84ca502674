package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"surfalert-service/internal/logging"
)

func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		entry := logger.WithFields(map[string]interface{}{"status": status, "latency": latency.String()})
		if status >= 500 {
			entry.Errorf("Request: %s %s", method, path)
			return
		}
		entry.Infof("Request: %s %s", method, path)
	}
}
