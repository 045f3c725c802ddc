package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Timestamp        time.Time         `json:"timestamp"`
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	Path             string            `json:"path"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// 错误码与HTTP状态码映射
var errorStatusMap = map[ErrorCode]int{
	// 系统错误 (1000-1999)
	ErrInternal: http.StatusInternalServerError,
	ErrDatabase: http.StatusInternalServerError,
	ErrCache:    http.StatusInternalServerError,
	ErrTimeout:  http.StatusRequestTimeout,
	ErrStorage:  http.StatusInternalServerError,

	// 认证错误 (2000-2999)
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrInvalidToken:       http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusUnauthorized,
	ErrIncorrectPassword:  http.StatusUnauthorized,

	// 请求错误 (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,
	ErrTooManyRequests:  http.StatusTooManyRequests,
	ErrPayloadTooLarge:  http.StatusRequestEntityTooLarge,

	// 业务错误 (4000-4999)
	ErrUserNotFound:        http.StatusNotFound,
	ErrEmailExists:         http.StatusBadRequest,
	ErrPhoneExists:         http.StatusBadRequest,
	ErrProductNotFound:     http.StatusNotFound,
	ErrProductUnavailable:  http.StatusBadRequest,
	ErrProductInUse:        http.StatusBadRequest,
	ErrAddressNotFound:     http.StatusNotFound,
	ErrAddressNotOwned:     http.StatusBadRequest,
	ErrOrderNotFound:       http.StatusNotFound,
	ErrOrderNotOwned:       http.StatusBadRequest,
	ErrOrderNotCancellable: http.StatusBadRequest,
	ErrReviewNotFound:      http.StatusNotFound,
	ErrReviewExists:        http.StatusBadRequest,
	ErrReviewNotOwned:      http.StatusForbidden,
}

// StatusOf 返回错误码对应的HTTP状态码
func StatusOf(code ErrorCode) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError 统一处理错误响应
func HandleError(c *gin.Context, err error) {
	// 交给错误监控中间件统计
	_ = c.Error(err)

	appErr, ok := As(err)
	if !ok {
		appErr = Internal(err)
	}

	status := StatusOf(appErr.Code)
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		util.Logger.Error("请求处理失败",
			zap.Int("error_code", int(appErr.Code)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err))
		message = "An unexpected error occurred"
	}

	resp := ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request.URL.Path,
	}
	if appErr.Code == ErrValidation {
		resp.Error = "Validation Failed"
		resp.ValidationErrors = appErr.Fields
	}

	c.AbortWithStatusJSON(status, resp)
}

// HandleBindError 处理请求体绑定失败
func HandleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		HandleError(c, Validation(FieldErrors(verrs)))
		return
	}
	HandleError(c, Wrap(ErrBadRequest, "Malformed request body", err))
}

// FieldErrors 把校验错误转换成 字段 -> 提示 的映射
func FieldErrors(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return fields
}

// fieldPath 去掉最外层结构体名，保留嵌套路径，例如 items[0].quantity
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "email":
		return "must be a well-formed email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return "size must be at least " + fe.Param()
		}
		return "must be greater than or equal to " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "size must be at most " + fe.Param()
		}
		return "must be less than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "product_category", "order_status", "payment_method", "coffee_size":
		return "invalid value: " + fmt.Sprint(fe.Value())
	}
	return "is invalid"
}
