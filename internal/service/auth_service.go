package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/repository/interfaces"
	"coffeeshop-backend/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenType = "Bearer"

// AuthService 处理注册、登录和修改密码
type AuthService struct {
	userRepo interfaces.UserRepository
	tx       interfaces.TxManager
	notifier Notifier
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	ChangePassword(ctx context.Context, userID int, req model.ChangePasswordRequest) error
}

var _ AuthServiceInterface = (*AuthService)(nil)

func NewAuthService(userRepo interfaces.UserRepository, tx interfaces.TxManager, notifier Notifier) *AuthService {
	return &AuthService{userRepo: userRepo, tx: tx, notifier: notifier}
}

// Register 注册新用户，默认角色为 CUSTOMER
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user := &model.User{
		FullName:    req.FullName,
		Email:       email,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Address:     req.Address,
		Role:        model.RoleCustomer,
		Enabled:     true,
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return errors.BadRequest(errors.ErrEmailExists, "Email already registered")
		}

		if user.PhoneNumber != "" {
			exists, err := s.userRepo.ExistsByPhone(ctx, user.PhoneNumber)
			if err != nil {
				return err
			}
			if exists {
				return errors.BadRequest(errors.ErrPhoneExists, "Phone number already registered")
			}
		}

		// 生成密码哈希
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)

		if err := s.userRepo.Create(ctx, user); err != nil {
			return userConflictError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.Logger.Info("用户注册成功", zap.Int("user_id", user.ID))
	s.notifier.SendWelcome(user)

	return s.issueToken(user)
}

// Login 任何认证失败都返回同一个提示，不暴露邮箱是否存在
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	invalid := errors.New(errors.ErrInvalidCredentials, "Invalid email or password")

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Enabled {
		util.Logger.Info("登录失败，用户不存在或已禁用", zap.String("email", req.Email))
		return nil, invalid
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.Logger.Info("登录失败，密码不正确", zap.Int("user_id", user.ID))
		return nil, invalid
	}

	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return s.issueToken(user)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int, req model.ChangePasswordRequest) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return errors.NotFound(errors.ErrUserNotFound, "User not found with ID: %d", userID)
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return errors.New(errors.ErrIncorrectPassword, "Current password is incorrect")
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := s.userRepo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
			return err
		}

		util.Logger.Info("密码修改成功", zap.Int("user_id", userID))
		return nil
	})
}

func (s *AuthService) issueToken(user *model.User) (*model.AuthResponse, error) {
	token, err := util.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.AuthResponse{
		Token:    token,
		Type:     tokenType,
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}, nil
}

// userConflictError 并发注册或修改资料时由唯一键兜底
func userConflictError(err error) error {
	switch {
	case stderrors.Is(err, interfaces.ErrDuplicatePhone):
		return errors.BadRequest(errors.ErrPhoneExists, "Phone number already registered")
	case stderrors.Is(err, interfaces.ErrDuplicate):
		return errors.BadRequest(errors.ErrEmailExists, "Email already registered")
	}
	return err
}
