package service

import (
	"context"
	"strings"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/repository/interfaces"
	"coffeeshop-backend/internal/util"

	"go.uber.org/zap"
)

// UserService 处理用户资料
type UserService struct {
	userRepo  interfaces.UserRepository
	orderRepo interfaces.OrderRepository
	tx        interfaces.TxManager
}

type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID int) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID int, req model.UpdateUserRequest) (*model.UserProfile, error)
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)

func NewUserService(userRepo interfaces.UserRepository, orderRepo interfaces.OrderRepository, tx interfaces.TxManager) *UserService {
	return &UserService{userRepo: userRepo, orderRepo: orderRepo, tx: tx}
}

func (s *UserService) getUser(ctx context.Context, userID int) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound(errors.ErrUserNotFound, "User not found with ID: %d", userID)
	}
	return user, nil
}

// GetProfile 返回用户资料和订单数量
func (s *UserService) GetProfile(ctx context.Context, userID int) (*model.UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

func (s *UserService) profile(ctx context.Context, user *model.User) (*model.UserProfile, error) {
	total, err := s.orderRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	active, err := s.orderRepo.CountByUserAndStatuses(ctx, user.ID, model.ActiveOrderStatuses)
	if err != nil {
		return nil, err
	}
	return &model.UserProfile{
		User:         *user,
		TotalOrders:  total,
		ActiveOrders: active,
		MemberSince:  user.CreatedAt,
	}, nil
}

// UpdateProfile 修改邮箱或手机号时重新检查唯一性
func (s *UserService) UpdateProfile(ctx context.Context, userID int, req model.UpdateUserRequest) (*model.UserProfile, error) {
	var user *model.User
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.getUser(ctx, userID)
		if err != nil {
			return err
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email != "" && email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return err
			}
			if exists {
				return errors.BadRequest(errors.ErrEmailExists, "Email already registered")
			}
			user.Email = email
		}

		phone := strings.TrimSpace(req.PhoneNumber)
		if phone != "" && phone != user.PhoneNumber {
			exists, err := s.userRepo.ExistsByPhone(ctx, phone)
			if err != nil {
				return err
			}
			if exists {
				return errors.BadRequest(errors.ErrPhoneExists, "Phone number already registered")
			}
			user.PhoneNumber = phone
		}

		user.FullName = req.FullName
		if req.Address != "" {
			user.Address = req.Address
		}
		if req.ProfileImageURL != "" {
			user.ProfileImageURL = req.ProfileImageURL
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return userConflictError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.Logger.Info("用户资料已更新", zap.Int("user_id", userID))
	return s.profile(ctx, user)
}
