package middleware

import (
	"sync"
	"time"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/metrics"
	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10000
	limiterIdleTTL    = 10 * time.Minute
)

// RateLimiter 按客户端IP限流，空闲的限流器会过期回收
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	return newRateLimiter(requestsPerSecond, burst, limiterIdleTTL)
}

func newRateLimiter(requestsPerSecond, burst int, idleTTL time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, idleTTL),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.limiters.Get(key); ok {
		// Get 不会续期，重新 Add 刷新过期时间
		rl.limiters.Add(key, l)
		return l
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters.Add(key, l)
	return l
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !rl.limiter(key).Allow() {
			metrics.RateLimited.Inc()
			util.Logger.Warn("请求过于频繁", zap.String("client", key), zap.String("path", c.Request.URL.Path))
			errors.HandleError(c, errors.New(errors.ErrTooManyRequests, "Too many requests, please slow down"))
			return
		}
		c.Next()
	}
}
