package order

import (
	"net/http"

	"coffeeshop-backend/internal/api/request"
	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/service"
	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderHandler 处理当前用户的订单请求
type OrderHandler struct {
	orderService service.OrderServiceInterface
}

func NewOrderHandler(orderService service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{orderService}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Logger.Warn("创建订单失败，无效的请求数据", zap.Int("user_id", principal.UserID), zap.Error(err))
		errors.HandleBindError(c, err)
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), principal.UserID, req)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	orderID, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), principal.UserID, orderID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrders 分页返回订单摘要，最新的在前
func (h *OrderHandler) ListOrders(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	page, err := h.orderService.ListOrders(c.Request.Context(), principal.UserID, request.Page(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *OrderHandler) ActiveOrders(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	orders, err := h.orderService.ActiveOrders(c.Request.Context(), principal.UserID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if orders == nil {
		orders = []*model.Order{}
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleBindError(c, err)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	orderID, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), principal.UserID, orderID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
