package request

import (
	"strconv"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/middleware"
	"coffeeshop-backend/internal/model"

	"github.com/gin-gonic/gin"
)

// IDParam 解析路径中的正整数ID
func IDParam(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, errors.BadRequest(errors.ErrBadRequest, "Invalid %s: %s", name, c.Param(name))
	}
	return id, nil
}

// Page 读取 page 和 size 查询参数，非法值回退为默认值
func Page(c *gin.Context) model.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	return model.NewPageRequest(page, size)
}

// Principal 返回当前登录用户
func Principal(c *gin.Context) (model.Principal, error) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return model.Principal{}, errors.Unauthorized("Authentication required")
	}
	return principal, nil
}
