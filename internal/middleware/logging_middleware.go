package middleware

import (
	"strconv"
	"time"

	"chatgraph/internal/metrics"
	"chatgraph/pkg/logger"

	"github.com/gin-gonic/gin"
)

func LoggingMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(latency.Seconds())

		log := l
		if log == nil {
			log = logger.GetGlobalLogger()
		}
		if log != nil {
			log.WithContext(c.Request.Context()).Sugar().Infof("%s %s %d %s", method, path, status, latency.String())
		}
	}
}
