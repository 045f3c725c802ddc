package api

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"coffeeshop-backend/config"
	"coffeeshop-backend/internal/api/admin"
	"coffeeshop-backend/internal/api/order"
	"coffeeshop-backend/internal/api/product"
	"coffeeshop-backend/internal/api/user"
	"coffeeshop-backend/internal/middleware"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.AppConfig.JWTSecret = "router-secret"
	os.Exit(m.Run())
}

// 受保护路由在进入处理器前就会被拦截，服务可以为空
func newTestRouter(health func() error) *gin.Engine {
	h := Handlers{
		Auth:    user.NewAuthHandler(nil),
		Profile: user.NewProfileHandler(nil),
		Address: user.NewAddressHandler(nil),
		Product: product.NewProductHandler(nil),
		Review:  product.NewReviewHandler(nil),
		Order:   order.NewOrderHandler(nil),
		Admin:   admin.NewAdminHandler(nil),
	}
	return NewRouter(h, RouterOptions{
		FrontendURL:  "http://localhost:5173",
		ErrorMonitor: middleware.NewErrorMonitor(),
		RateLimiter:  middleware.NewRateLimiter(100, 100),
		HealthCheck:  health,
	})
}

func call(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := call(newTestRouter(nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())

	w = call(newTestRouter(func() error { return stderrors.New("db down") }), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(nil)
	call(r, http.MethodGet, "/health", "")

	w := call(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "coffeeshop_http_requests_total")
}

func TestProtectedRoutes(t *testing.T) {
	customer, err := util.GenerateToken(2, model.RoleCustomer)
	require.NoError(t, err)
	r := newTestRouter(nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{name: "orders need token", method: http.MethodGet, path: "/api/v1/orders", status: http.StatusUnauthorized},
		{name: "addresses need token", method: http.MethodGet, path: "/api/v1/addresses", status: http.StatusUnauthorized},
		{name: "profile needs token", method: http.MethodGet, path: "/api/v1/users/me", status: http.StatusUnauthorized},
		{name: "stats need token", method: http.MethodGet, path: "/api/v1/admin/stats", status: http.StatusUnauthorized},
		{name: "stats need admin", method: http.MethodGet, path: "/api/v1/admin/stats", token: customer, status: http.StatusForbidden},
		{name: "create product needs admin", method: http.MethodPost, path: "/api/v1/products", token: customer, status: http.StatusForbidden},
		{name: "delete product needs admin", method: http.MethodDelete, path: "/api/v1/products/3", token: customer, status: http.StatusForbidden},
		{name: "review write needs token", method: http.MethodPost, path: "/api/v1/products/3/reviews", status: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nope", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, call(r, tt.method, tt.path, tt.token).Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
