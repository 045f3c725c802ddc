package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coffeeshop-backend/config"
	"coffeeshop-backend/internal/api"
	"coffeeshop-backend/internal/api/admin"
	"coffeeshop-backend/internal/api/order"
	"coffeeshop-backend/internal/api/product"
	"coffeeshop-backend/internal/api/user"
	"coffeeshop-backend/internal/cache"
	"coffeeshop-backend/internal/common"
	"coffeeshop-backend/internal/middleware"
	"coffeeshop-backend/internal/migrations"
	"coffeeshop-backend/internal/repository/mysql"
	"coffeeshop-backend/internal/service"
	"coffeeshop-backend/internal/storage"
	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func main() {
	// 初始化配置
	config.Init()
	cfg := config.AppConfig

	// 初始化日志
	util.InitLogger(cfg.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	ctx := context.Background()

	db := openDatabase(ctx, cfg)
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		util.Logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		util.RegisterValidators(v)
	}

	catalogCache, err := cache.New(cfg.CacheDriver, cfg.CacheSize, time.Duration(cfg.CacheTTLSeconds)*time.Second,
		cache.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		util.Logger.Fatal("初始化缓存失败", zap.Error(err))
	}
	defer closeIfCloser("缓存", catalogCache)

	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		util.Logger.Fatal("初始化存储失败", zap.Error(err))
	}
	defer closeIfCloser("存储", fileStorage)

	// 初始化存储库、服务和处理器
	tx := mysql.NewTxManager(db)
	userRepo := mysql.NewUserRepository(db)
	addressRepo := mysql.NewAddressRepository(db)
	productRepo := mysql.NewProductRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	emailService := service.NewEmailService(cfg)
	errorMonitor := middleware.NewErrorMonitor()

	authService := service.NewAuthService(userRepo, tx, emailService)
	userService := service.NewUserService(userRepo, orderRepo, tx)
	addressService := service.NewAddressService(addressRepo, userRepo, tx)
	productService := service.NewProductService(productRepo, tx, catalogCache, fileStorage)
	reviewService := service.NewReviewService(reviewRepo, productRepo, orderRepo, tx, catalogCache)
	orderService := service.NewOrderService(orderRepo, userRepo, addressRepo, productRepo, tx, emailService)
	statsService := service.NewStatsService(userRepo, orderRepo, errorMonitor)

	handlers := api.Handlers{
		Auth:    user.NewAuthHandler(authService),
		Profile: user.NewProfileHandler(userService),
		Address: user.NewAddressHandler(addressService),
		Product: product.NewProductHandler(productService),
		Review:  product.NewReviewHandler(reviewService),
		Order:   order.NewOrderHandler(orderService),
		Admin:   admin.NewAdminHandler(statsService),
	}

	opts := api.RouterOptions{
		FrontendURL:  cfg.FrontendURL,
		RateLimiter:  middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		ErrorMonitor: errorMonitor,
		HealthCheck: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		},
	}
	if local, ok := fileStorage.(*storage.LocalStorage); ok {
		opts.UploadsPath = local.BasePath()
	}
	r := api.NewRouter(handlers, opts)

	if cfg.Debug {
		for _, route := range r.Routes() {
			util.Logger.Debug("路由", zap.String("method", route.Method), zap.String("path", route.Path))
		}
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.Logger.Error("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// openDatabase 连接数据库，启动时数据库可能尚未就绪，连接错误会重试
func openDatabase(ctx context.Context, cfg config.Config) *sql.DB {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = common.WithRetry(ctx, 5, 2*time.Second, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功", zap.String("host", cfg.DBHost), zap.String("database", cfg.DBName))
	return db
}

func closeIfCloser(name string, v interface{}) {
	closer, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		util.Logger.Warn("关闭资源失败", zap.String("resource", name), zap.Error(err))
	}
}
