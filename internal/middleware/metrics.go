package middleware

import (
	"strconv"
	"time"

	"coffeeshop-backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware 记录请求数和耗时，按路由模板聚合
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeOf(c)
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
