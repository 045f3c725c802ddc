package product

import (
	"net/http"

	"coffeeshop-backend/internal/api/request"
	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ReviewHandler 商品评价，路径中的 :id 为商品ID或评价ID
type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{reviewService}
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	productID, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	page, err := h.reviewService.ListReviews(c.Request.Context(), productID, request.Page(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	productID, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleBindError(c, err)
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), principal.UserID, productID, req)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	reviewID, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	var req model.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleBindError(c, err)
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), principal, reviewID, req)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	principal, err := request.Principal(c)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	reviewID, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), principal, reviewID); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
