package user

import (
	"net/http"

	"coffeeshop-backend/internal/api/request"
	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	userService service.UserServiceInterface
}

func NewProfileHandler(userService service.UserServiceInterface) *ProfileHandler {
	return &ProfileHandler{userService}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleBindError(c, err)
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), principal.UserID, req)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
