package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"coffeeshop-backend/config"
	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.AppConfig.JWTSecret = "middleware-secret"
	os.Exit(m.Run())
}

func newRouter(monitor *ErrorMonitor) *gin.Engine {
	r := gin.New()
	r.Use(ErrorMonitorMiddleware(monitor), RecoveryMiddleware())

	authed := r.Group("/api", AuthMiddleware())
	authed.GET("/me", func(c *gin.Context) {
		p, _ := CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID})
	})
	authed.GET("/admin", AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/boom", func(c *gin.Context) {
		panic("kaput")
	})
	return r
}

func bearer(t *testing.T, userID int, role model.UserRole) string {
	t.Helper()
	token, err := util.GenerateToken(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(NewErrorMonitor())

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{name: "missing header", auth: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", auth: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", auth: "Bearer not-a-jwt", status: http.StatusUnauthorized},
		{name: "valid token", auth: bearer(t, 5, model.RoleCustomer), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, "/api/me", tt.auth)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAuthMiddlewareSetsPrincipal(t *testing.T) {
	w := serve(newRouter(NewErrorMonitor()), "/api/me", bearer(t, 5, model.RoleCustomer))

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 5, body["user_id"])
}

func TestAdminMiddleware(t *testing.T) {
	r := newRouter(NewErrorMonitor())

	assert.Equal(t, http.StatusForbidden, serve(r, "/api/admin", bearer(t, 5, model.RoleCustomer)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/api/admin", bearer(t, 1, model.RoleAdmin)).Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	monitor := NewErrorMonitor()
	w := serve(newRouter(monitor), "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "An unexpected error occurred", body.Message)
	assert.Equal(t, "/boom", body.Path)
	assert.Equal(t, 1, monitor.GetErrorCounts()[errors.ErrInternal])
}

func TestErrorMonitorCountsByCodeAndRoute(t *testing.T) {
	monitor := NewErrorMonitor()
	r := newRouter(monitor)

	serve(r, "/api/me", "")
	serve(r, "/api/me", "Bearer nope")
	serve(r, "/api/admin", bearer(t, 5, model.RoleCustomer))

	counts := monitor.GetErrorCounts()
	assert.Equal(t, 1, counts[errors.ErrUnauthorized])
	assert.Equal(t, 1, counts[errors.ErrInvalidToken])
	assert.Equal(t, 1, counts[errors.ErrForbidden])
	assert.Equal(t, 2, monitor.GetRouteCounts()["/api/me"])
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(1, 2).Middleware(), MetricsMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, "/ping", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterActiveClientKeepsLimiter(t *testing.T) {
	rl := newRateLimiter(1, 1, 200*time.Millisecond)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "/ping", "").Code)
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "/ping", "").Code)
	// 距首次请求已超过空闲时间，但期间一直有请求
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "/ping", "").Code)
}
