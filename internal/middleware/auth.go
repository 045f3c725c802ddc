package middleware

import (
	"context"
	"strings"
	"time"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	principalKey   = "principal"
	requestTimeout = 5 * time.Second
)

// AuthMiddleware 校验 Bearer 令牌，并把当前用户写入上下文
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.HandleError(c, errors.Unauthorized("Authentication required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			errors.HandleError(c, errors.Unauthorized("Invalid authorization header format"))
			return
		}

		principal, err := util.ValidateToken(parts[1])
		if err != nil {
			util.Logger.Debug("令牌校验失败", zap.String("path", c.Request.URL.Path), zap.Error(err))
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "Invalid or expired token", err))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set(principalKey, principal)
		c.Next()
	}
}

// CurrentPrincipal 读取认证中间件写入的用户信息
func CurrentPrincipal(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := v.(model.Principal)
	return principal, ok
}

// SetPrincipal 供测试和内部调用直接注入用户
func SetPrincipal(c *gin.Context, principal model.Principal) {
	c.Set(principalKey, principal)
}
