package middleware

import (
	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireRole 只允许指定角色访问，必须放在 AuthMiddleware 之后
func RequireRole(role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			errors.HandleError(c, errors.Unauthorized("Authentication required"))
			return
		}
		if principal.Role != role {
			util.Logger.Warn("角色不匹配，拒绝访问",
				zap.Int("user_id", principal.UserID),
				zap.String("role", string(principal.Role)),
				zap.String("path", c.Request.URL.Path))
			errors.HandleError(c, errors.Forbidden("Access denied"))
			return
		}
		c.Next()
	}
}

// AdminMiddleware 确保只有管理员可以访问某些路由
func AdminMiddleware() gin.HandlerFunc {
	return RequireRole(model.RoleAdmin)
}
