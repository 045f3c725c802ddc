package middleware

import (
	"net/http"
	"sync"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorMonitor 按错误码和路由统计请求错误
type ErrorMonitor struct {
	errorCounts map[errors.ErrorCode]int
	routeCounts map[string]int
	mu          sync.RWMutex
}

func NewErrorMonitor() *ErrorMonitor {
	return &ErrorMonitor{
		errorCounts: make(map[errors.ErrorCode]int),
		routeCounts: make(map[string]int),
	}
}

func (m *ErrorMonitor) RecordError(route string, err error) {
	code := errors.ErrInternal
	if appErr, ok := errors.As(err); ok {
		code = appErr.Code
	}
	m.mu.Lock()
	m.errorCounts[code]++
	m.routeCounts[route]++
	m.mu.Unlock()
}

func (m *ErrorMonitor) GetErrorCounts() map[errors.ErrorCode]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[errors.ErrorCode]int, len(m.errorCounts))
	for code, count := range m.errorCounts {
		counts[code] = count
	}
	return counts
}

func (m *ErrorMonitor) GetRouteCounts() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int, len(m.routeCounts))
	for route, count := range m.routeCounts {
		counts[route] = count
	}
	return counts
}

func ErrorMonitorMiddleware(monitor *ErrorMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		route := routeOf(c)
		for _, e := range c.Errors {
			monitor.RecordError(route, e.Err)
			// 5xx 已在 HandleError 中记录
			if c.Writer.Status() < http.StatusInternalServerError {
				util.Logger.Debug("请求处理错误",
					zap.String("route", route),
					zap.String("method", c.Request.Method),
					zap.Int("status", c.Writer.Status()),
					zap.Error(e.Err))
			}
		}
	}
}

// routeOf 未匹配的路由统一记为 unmatched，避免路径基数过大
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
