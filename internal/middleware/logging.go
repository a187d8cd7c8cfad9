package middleware

import (
	"effisense-go/pkg/log"
	"effisense-go/pkg/metrics"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request and records its latency.
// Bodies are not logged: login and register forms carry passwords.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(statusCode)).Observe(latency.Seconds())

		fields := []interface{}{
			"statusCode", statusCode,
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"requestId", c.GetString("requestId"),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		if statusCode >= 500 {
			log.Errorw("HTTP Request Log", fields...)
			return
		}
		log.Infow("HTTP Request Log", fields...)
	}
}
