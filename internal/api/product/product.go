package product

import (
	"net/http"
	"strconv"

	"coffeeshop-backend/internal/api/request"
	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/service"
	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductHandler 处理商品目录相关的HTTP请求
type ProductHandler struct {
	productService service.ProductServiceInterface
}

func NewProductHandler(productService service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{productService}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, err := h.productService.ListProducts(c.Request.Context(), request.Page(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) ProductsByCategory(c *gin.Context) {
	category := model.ProductCategory(c.Param("category"))
	page, err := h.productService.ProductsByCategory(c.Request.Context(), category, request.Page(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) SearchProducts(c *gin.Context) {
	page, err := h.productService.SearchProducts(c.Request.Context(), c.Query("query"), request.Page(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) FeaturedProducts(c *gin.Context) {
	products, err := h.productService.FeaturedProducts(c.Request.Context())
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(products))
}

func (h *ProductHandler) TopRatedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.productService.TopRatedProducts(c.Request.Context(), limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(products))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req model.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Logger.Warn("创建商品失败，无效的请求数据", zap.Error(err))
		errors.HandleBindError(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	var req model.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleBindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage 接收 multipart 表单中的 image 字段
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		errors.HandleError(c, errors.Validation(map[string]string{"image": "must not be empty"}))
		return
	}

	product, err := h.productService.UploadImage(c.Request.Context(), id, file)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func nonNil(products []*model.Product) []*model.Product {
	if products == nil {
		return []*model.Product{}
	}
	return products
}
