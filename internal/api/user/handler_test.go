package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/middleware"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/service"
	"coffeeshop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		util.RegisterValidators(v)
	}
	os.Exit(m.Run())
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID int, req model.ChangePasswordRequest) error {
	args := m.Called(ctx, userID, req)
	return args.Error(0)
}

var _ service.AuthServiceInterface = (*MockAuthService)(nil)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, userID int) (*model.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID int, req model.UpdateUserRequest) (*model.UserProfile, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

var _ service.UserServiceInterface = (*MockUserService)(nil)

type MockAddressService struct {
	mock.Mock
}

func (m *MockAddressService) CreateAddress(ctx context.Context, userID int, req model.CreateAddressRequest) (*model.Address, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockAddressService) ListAddresses(ctx context.Context, userID int) ([]*model.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Address), args.Error(1)
}

func (m *MockAddressService) GetAddress(ctx context.Context, userID, addressID int) (*model.Address, error) {
	args := m.Called(ctx, userID, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockAddressService) UpdateAddress(ctx context.Context, userID, addressID int, req model.UpdateAddressRequest) (*model.Address, error) {
	args := m.Called(ctx, userID, addressID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockAddressService) DeleteAddress(ctx context.Context, userID, addressID int) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

func (m *MockAddressService) SetDefaultAddress(ctx context.Context, userID, addressID int) (*model.Address, error) {
	args := m.Called(ctx, userID, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

var _ service.AddressServiceInterface = (*MockAddressService)(nil)

// asUser 模拟认证中间件注入当前用户
func asUser(userID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetPrincipal(c, model.Principal{UserID: userID, Role: model.RoleCustomer})
		c.Next()
	}
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// TestRegister 测试注册处理器
func TestRegister(t *testing.T) {
	mockService := new(MockAuthService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/auth/register", handler.Register)

	mockService.On("Register", mock.Anything, mock.MatchedBy(func(req model.RegisterRequest) bool {
		return req.Email == "ana@example.com"
	})).Return(&model.AuthResponse{Token: "tok", Type: "Bearer", UserID: 1, Email: "ana@example.com", Role: model.RoleCustomer}, nil)
	mockService.On("Register", mock.Anything, mock.MatchedBy(func(req model.RegisterRequest) bool {
		return req.Email == "taken@example.com"
	})).Return(nil, errors.BadRequest(errors.ErrEmailExists, "Email already registered"))

	w := doJSON(router, http.MethodPost, "/auth/register", `{"full_name":"Ana","email":"ana@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.Type)
	assert.Equal(t, "tok", resp.Token)

	w = doJSON(router, http.MethodPost, "/auth/register", `{"full_name":"Ana","email":"taken@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", decodeError(t, w).Message)
}

func TestRegisterValidation(t *testing.T) {
	mockService := new(MockAuthService)
	router := gin.New()
	router.POST("/auth/register", NewAuthHandler(mockService).Register)

	w := doJSON(router, http.MethodPost, "/auth/register", `{"full_name":"A","email":"not-an-email","password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Validation Failed", resp.Error)
	assert.Equal(t, "Invalid input parameters", resp.Message)
	assert.Contains(t, resp.ValidationErrors, "email")
	assert.Contains(t, resp.ValidationErrors, "password")
	assert.Contains(t, resp.ValidationErrors, "full_name")
	mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

// TestLogin 测试登录处理器
func TestLogin(t *testing.T) {
	mockService := new(MockAuthService)
	router := gin.New()
	router.POST("/auth/login", NewAuthHandler(mockService).Login)

	mockService.On("Login", mock.Anything, model.LoginRequest{Email: "ana@example.com", Password: "secret123"}).
		Return(&model.AuthResponse{Token: "tok", Type: "Bearer", UserID: 1}, nil)
	mockService.On("Login", mock.Anything, model.LoginRequest{Email: "ana@example.com", Password: "wrong"}).
		Return(nil, errors.New(errors.ErrInvalidCredentials, "Invalid email or password"))

	w := doJSON(router, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/auth/login", decodeError(t, w).Path)
}

func TestChangePassword(t *testing.T) {
	mockService := new(MockAuthService)
	router := gin.New()
	router.POST("/auth/change-password", asUser(4), NewAuthHandler(mockService).ChangePassword)

	mockService.On("ChangePassword", mock.Anything, 4, model.ChangePasswordRequest{CurrentPassword: "oldpass1", NewPassword: "newpass12"}).Return(nil)

	w := doJSON(router, http.MethodPost, "/auth/change-password", `{"current_password":"oldpass1","new_password":"newpass12"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestProfileEndpoints(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewProfileHandler(mockService)
	router := gin.New()
	router.GET("/users/me", asUser(1), handler.GetProfile)
	router.PUT("/users/me", asUser(1), handler.UpdateProfile)

	profile := &model.UserProfile{User: model.User{ID: 1, FullName: "Ana"}, TotalOrders: 3, ActiveOrders: 1}
	mockService.On("GetProfile", mock.Anything, 1).Return(profile, nil)
	mockService.On("UpdateProfile", mock.Anything, 1, model.UpdateUserRequest{FullName: "Ana B"}).Return(profile, nil)

	w := doJSON(router, http.MethodGet, "/users/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 3, body["total_orders"])
	assert.EqualValues(t, 1, body["active_orders"])

	w = doJSON(router, http.MethodPut, "/users/me", `{"full_name":"Ana B"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPut, "/users/me", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileRequiresPrincipal(t *testing.T) {
	router := gin.New()
	router.GET("/users/me", NewProfileHandler(new(MockUserService)).GetProfile)

	w := doJSON(router, http.MethodGet, "/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAddressEndpoints(t *testing.T) {
	mockService := new(MockAddressService)
	handler := NewAddressHandler(mockService)
	router := gin.New()
	group := router.Group("/addresses", asUser(1))
	group.POST("", handler.CreateAddress)
	group.GET("", handler.ListAddresses)
	group.GET("/:id", handler.GetAddress)
	group.DELETE("/:id", handler.DeleteAddress)
	group.PUT("/:id/default", handler.SetDefaultAddress)

	home := &model.Address{ID: 30, UserID: 1, Label: "Home", IsDefault: true}
	mockService.On("CreateAddress", mock.Anything, 1, mock.AnythingOfType("model.CreateAddressRequest")).Return(home, nil)
	mockService.On("ListAddresses", mock.Anything, 1).Return([]*model.Address{home}, nil)
	mockService.On("GetAddress", mock.Anything, 1, 31).
		Return(nil, errors.BadRequest(errors.ErrAddressNotOwned, "Address does not belong to the user"))
	mockService.On("DeleteAddress", mock.Anything, 1, 30).Return(nil)
	mockService.On("SetDefaultAddress", mock.Anything, 1, 30).Return(home, nil)

	body := `{"label":"Home","address_line1":"1 Main St","city":"Springfield","state":"IL","zip_code":"62701","country":"US"}`
	assert.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, "/addresses", body).Code)

	w := doJSON(router, http.MethodPost, "/addresses", `{"label":"Home"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).ValidationErrors, "address_line1")

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/addresses", "").Code)

	w = doJSON(router, http.MethodGet, "/addresses/31", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Address does not belong to the user", decodeError(t, w).Message)

	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodGet, "/addresses/abc", "").Code)
	assert.Equal(t, http.StatusNoContent, doJSON(router, http.MethodDelete, "/addresses/30", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodPut, "/addresses/30/default", "").Code)
}
