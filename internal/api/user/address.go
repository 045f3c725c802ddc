package user

import (
	"net/http"

	"coffeeshop-backend/internal/api/request"
	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AddressHandler 管理当前用户的配送地址
type AddressHandler struct {
	addressService service.AddressServiceInterface
}

func NewAddressHandler(addressService service.AddressServiceInterface) *AddressHandler {
	return &AddressHandler{addressService}
}

// withAddress 解析当前用户和路径中的地址ID
func withAddress(c *gin.Context) (model.Principal, int, bool) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return principal, 0, false
	}
	id, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return principal, 0, false
	}
	return principal, id, true
}

func (h *AddressHandler) CreateAddress(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	var req model.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleBindError(c, err)
		return
	}

	address, err := h.addressService.CreateAddress(c.Request.Context(), principal.UserID, req)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, address)
}

func (h *AddressHandler) ListAddresses(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	addresses, err := h.addressService.ListAddresses(c.Request.Context(), principal.UserID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if addresses == nil {
		addresses = []*model.Address{}
	}

	c.JSON(http.StatusOK, addresses)
}

func (h *AddressHandler) GetAddress(c *gin.Context) {
	principal, id, ok := withAddress(c)
	if !ok {
		return
	}

	address, err := h.addressService.GetAddress(c.Request.Context(), principal.UserID, id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, address)
}

func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	principal, id, ok := withAddress(c)
	if !ok {
		return
	}

	var req model.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleBindError(c, err)
		return
	}

	address, err := h.addressService.UpdateAddress(c.Request.Context(), principal.UserID, id, req)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, address)
}

func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	principal, id, ok := withAddress(c)
	if !ok {
		return
	}

	if err := h.addressService.DeleteAddress(c.Request.Context(), principal.UserID, id); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AddressHandler) SetDefaultAddress(c *gin.Context) {
	principal, id, ok := withAddress(c)
	if !ok {
		return
	}

	address, err := h.addressService.SetDefaultAddress(c.Request.Context(), principal.UserID, id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, address)
}
