package admin

import (
	"net/http"
	"time"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/service"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// AdminHandler 管理员统计接口
type AdminHandler struct {
	statsService service.StatsServiceInterface
}

// NewAdminHandler 创建一个新的 AdminHandler 实例
func NewAdminHandler(statsService service.StatsServiceInterface) *AdminHandler {
	return &AdminHandler{statsService}
}

// GetStats 支持 RFC3339 或 YYYY-MM-DD，日期形式的 to 包含当天
func (h *AdminHandler) GetStats(c *gin.Context) {
	from, err := parseTime(c.Query("from"), false)
	if err != nil {
		errors.HandleError(c, errors.Validation(map[string]string{"from": "must be RFC3339 or YYYY-MM-DD"}))
		return
	}
	to, err := parseTime(c.Query("to"), true)
	if err != nil {
		errors.HandleError(c, errors.Validation(map[string]string{"to": "must be RFC3339 or YYYY-MM-DD"}))
		return
	}

	stats, err := h.statsService.GetStats(c.Request.Context(), from, to)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseTime(value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
