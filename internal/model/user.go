package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	RoleCustomer       UserRole = "CUSTOMER"
	RoleAdmin          UserRole = "ADMIN"
	RoleBarista        UserRole = "BARISTA"
	RoleDeliveryPerson UserRole = "DELIVERY_PERSON"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleBarista, RoleDeliveryPerson:
		return true
	}
	return false
}

// User 结构体表示用户模型
type User struct {
	ID              int       `json:"id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"` // 密码哈希不应在JSON中暴露
	PhoneNumber     string    `json:"phone_number,omitempty"`
	Address         string    `json:"address,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	Role            UserRole  `json:"role"`
	Enabled         bool      `json:"enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Principal 是经过认证的调用方，由认证中间件放入请求上下文
type Principal struct {
	UserID int
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type RegisterRequest struct {
	FullName    string `json:"full_name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,max=20"`
	Address     string `json:"address" binding:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// AuthResponse 注册和登录成功后返回的令牌信息
type AuthResponse struct {
	Token    string   `json:"token"`
	Type     string   `json:"type"`
	UserID   int      `json:"user_id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

type UpdateUserRequest struct {
	FullName        string `json:"full_name" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"omitempty,email"`
	PhoneNumber     string `json:"phone_number" binding:"omitempty,max=20"`
	Address         string `json:"address" binding:"omitempty,max=255"`
	ProfileImageURL string `json:"profile_image_url" binding:"omitempty,url"`
}

// UserProfile 用户资料以及订单统计
type UserProfile struct {
	User
	TotalOrders  int       `json:"total_orders"`
	ActiveOrders int       `json:"active_orders"`
	MemberSince  time.Time `json:"member_since"`
}
