package api

import (
	"net/http"
	"strings"

	"coffeeshop-backend/internal/api/admin"
	"coffeeshop-backend/internal/api/order"
	"coffeeshop-backend/internal/api/product"
	"coffeeshop-backend/internal/api/user"
	"coffeeshop-backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 汇总所有 HTTP 处理器
type Handlers struct {
	Auth    *user.AuthHandler
	Profile *user.ProfileHandler
	Address *user.AddressHandler
	Product *product.ProductHandler
	Review  *product.ReviewHandler
	Order   *order.OrderHandler
	Admin   *admin.AdminHandler
}

// RouterOptions 路由相关的运行配置
type RouterOptions struct {
	FrontendURL  string
	UploadsPath  string // 为空时不提供本地静态文件
	RateLimiter  *middleware.RateLimiter
	ErrorMonitor *middleware.ErrorMonitor
	HealthCheck  func() error
}

// NewRouter 注册中间件和 /api/v1 下的全部路由
func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())

	// 错误监控必须在 recovery 外层，才能统计 panic
	r.Use(middleware.ErrorMonitorMiddleware(opts.ErrorMonitor))
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.MetricsMiddleware())

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{opts.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		if opts.HealthCheck != nil {
			if err := opts.HealthCheck(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.UploadsPath != "" {
		// 静态文件单独处理跨域
		r.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
				c.Header("Access-Control-Allow-Origin", opts.FrontendURL)
				c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			}
			c.Next()
		})
		r.Static("/uploads", opts.UploadsPath)
	}

	v1 := r.Group("/api/v1")
	if opts.RateLimiter != nil {
		v1.Use(opts.RateLimiter.Middleware())
	}

	auth := middleware.AuthMiddleware()
	adminOnly := middleware.AdminMiddleware()

	// 认证
	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/change-password", auth, h.Auth.ChangePassword)

	// 用户资料
	v1.GET("/users/me", auth, h.Profile.GetProfile)
	v1.PUT("/users/me", auth, h.Profile.UpdateProfile)

	// 地址
	addresses := v1.Group("/addresses", auth)
	{
		addresses.POST("", h.Address.CreateAddress)
		addresses.GET("", h.Address.ListAddresses)
		addresses.GET("/:id", h.Address.GetAddress)
		addresses.PUT("/:id", h.Address.UpdateAddress)
		addresses.DELETE("/:id", h.Address.DeleteAddress)
		addresses.PUT("/:id/default", h.Address.SetDefaultAddress)
	}

	// 商品目录，读接口公开
	products := v1.Group("/products")
	{
		products.GET("", h.Product.ListProducts)
		products.GET("/featured", h.Product.FeaturedProducts)
		products.GET("/top-rated", h.Product.TopRatedProducts)
		products.GET("/search", h.Product.SearchProducts)
		products.GET("/category/:category", h.Product.ProductsByCategory)
		products.GET("/:id", h.Product.GetProduct)
		products.POST("", auth, adminOnly, h.Product.CreateProduct)
		products.PUT("/:id", auth, adminOnly, h.Product.UpdateProduct)
		products.DELETE("/:id", auth, adminOnly, h.Product.DeleteProduct)
		products.POST("/:id/image", auth, adminOnly, h.Product.UploadImage)

		products.GET("/:id/reviews", h.Review.ListReviews)
		products.POST("/:id/reviews", auth, h.Review.CreateReview)
	}
	v1.PUT("/reviews/:id", auth, h.Review.UpdateReview)
	v1.DELETE("/reviews/:id", auth, h.Review.DeleteReview)

	// 订单
	orders := v1.Group("/orders", auth)
	{
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.ListOrders)
		orders.GET("/active", h.Order.ActiveOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.PATCH("/:id/status", h.Order.UpdateOrderStatus)
		orders.POST("/:id/cancel", h.Order.CancelOrder)
	}

	// 管理员
	adminRoutes := v1.Group("/admin", auth, adminOnly)
	{
		adminRoutes.GET("/stats", h.Admin.GetStats)
	}

	return r
}
