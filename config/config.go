package config

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	JWTSecret          string
	JWTExpirationHours int
	LogLevel           string
	ServerPort         string
	FrontendURL        string
	BackendURL         string
	CacheDriver        string // memory 或 redis
	CacheSize          int
	CacheTTLSeconds    int
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitRPS       int
	RateLimitBurst     int
	StorageDriver      string // local、s3 或 gcs
	LocalStoragePath   string
	S3Region           string
	S3Bucket           string
	GCSBucketName      string
	GCSCredentialsFile string
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	Debug              bool // 是否开启调试模式
}

// AppConfig 是全局配置变量
var AppConfig Config

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	err := godotenv.Load()
	if err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	AppConfig = Load()

	validateConfig()

	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("应用程序运行在调试模式")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("应用程序运行在生产模式")
	}

	log.Printf("配置加载完成。数据库：%s:%s，缓存：%s，存储：%s",
		AppConfig.DBHost, AppConfig.DBPort, AppConfig.CacheDriver, AppConfig.StorageDriver)
}

// Load 从环境变量中读取配置，不做校验
func Load() Config {
	return Config{
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBUser:             getEnv("DB_USER", ""),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBName:             getEnv("DB_NAME", "coffeeshop"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:         getEnv("BACKEND_URL", "http://localhost:8080"),
		CacheDriver:        getEnv("CACHE_DRIVER", "memory"),
		CacheSize:          getEnvAsInt("CACHE_SIZE", 1024),
		CacheTTLSeconds:    getEnvAsInt("CACHE_TTL_SECONDS", 600),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		RateLimitRPS:       getEnvAsInt("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
		StorageDriver:      getEnv("STORAGE_DRIVER", "local"),
		LocalStoragePath:   getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		S3Region:           getEnv("S3_REGION", "us-west-2"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		GCSBucketName:      getEnv("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvAsInt("SMTP_PORT", 465),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		Debug:              getEnvAsBool("DEBUG", false),
	}
}

// EmailEnabled 未配置 SMTP 主机时不发送邮件
func (c Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func validateConfig() {
	if AppConfig.DBHost == "" || AppConfig.DBPort == "" || AppConfig.DBUser == "" || AppConfig.DBName == "" {
		log.Fatal("错误：数据库配置不完整")
	}
	if AppConfig.JWTSecret == "" {
		log.Fatal("错误：JWT密钥未设置")
	}
	switch AppConfig.StorageDriver {
	case "local", "s3", "gcs":
	default:
		log.Fatalf("错误：不支持的存储驱动 %s", AppConfig.StorageDriver)
	}
	if AppConfig.CacheDriver != "memory" && AppConfig.CacheDriver != "redis" {
		log.Fatalf("错误：不支持的缓存驱动 %s", AppConfig.CacheDriver)
	}
}
