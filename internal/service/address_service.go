package service

import (
	"context"
	stderrors "errors"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/repository/interfaces"
	"coffeeshop-backend/internal/util"

	"go.uber.org/zap"
)

// AddressService 管理用户的配送地址，每个用户最多一个默认地址
type AddressService struct {
	addressRepo interfaces.AddressRepository
	userRepo    interfaces.UserRepository
	tx          interfaces.TxManager
}

type AddressServiceInterface interface {
	CreateAddress(ctx context.Context, userID int, req model.CreateAddressRequest) (*model.Address, error)
	ListAddresses(ctx context.Context, userID int) ([]*model.Address, error)
	GetAddress(ctx context.Context, userID, addressID int) (*model.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID int, req model.UpdateAddressRequest) (*model.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID int) error
	SetDefaultAddress(ctx context.Context, userID, addressID int) (*model.Address, error)
}

var _ AddressServiceInterface = (*AddressService)(nil)

func NewAddressService(addressRepo interfaces.AddressRepository, userRepo interfaces.UserRepository, tx interfaces.TxManager) *AddressService {
	return &AddressService{addressRepo: addressRepo, userRepo: userRepo, tx: tx}
}

// loadOwned 加载地址并校验归属
func (s *AddressService) loadOwned(ctx context.Context, userID, addressID int) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, errors.NotFound(errors.ErrAddressNotFound, "Address not found with ID: %d", addressID)
	}
	if address.UserID != userID {
		return nil, errors.BadRequest(errors.ErrAddressNotOwned, "Address does not belong to the user")
	}
	return address, nil
}

func (s *AddressService) CreateAddress(ctx context.Context, userID int, req model.CreateAddressRequest) (*model.Address, error) {
	util.Logger.Info("Service: 开始创建地址", zap.Int("user_id", userID))

	address := &model.Address{
		UserID:               userID,
		Label:                req.Label,
		AddressLine1:         req.AddressLine1,
		AddressLine2:         req.AddressLine2,
		City:                 req.City,
		State:                req.State,
		ZipCode:              req.ZipCode,
		Country:              req.Country,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		IsDefault:            req.IsDefault,
		DeliveryInstructions: req.DeliveryInstructions,
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return errors.NotFound(errors.ErrUserNotFound, "User not found with ID: %d", userID)
		}

		// 第一个地址自动成为默认地址
		count, err := s.addressRepo.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if count == 0 {
			address.IsDefault = true
		}

		if address.IsDefault {
			if err := s.addressRepo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return s.addressRepo.Create(ctx, address)
	})
	if err != nil {
		util.Logger.Error("创建地址失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}

	util.Logger.Info("地址创建成功", zap.Int("address_id", address.ID), zap.Int("user_id", userID))
	return address, nil
}

func (s *AddressService) ListAddresses(ctx context.Context, userID int) ([]*model.Address, error) {
	return s.addressRepo.ListByUser(ctx, userID)
}

func (s *AddressService) GetAddress(ctx context.Context, userID, addressID int) (*model.Address, error) {
	return s.loadOwned(ctx, userID, addressID)
}

func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID int, req model.UpdateAddressRequest) (*model.Address, error) {
	var address *model.Address
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		address, err = s.loadOwned(ctx, userID, addressID)
		if err != nil {
			return err
		}
		req.Apply(address)
		return s.addressRepo.Update(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteAddress 删除默认地址时，把最近的另一个地址设为默认
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID int) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		address, err := s.loadOwned(ctx, userID, addressID)
		if err != nil {
			return err
		}

		if err := s.addressRepo.Delete(ctx, addressID); err != nil {
			if stderrors.Is(err, interfaces.ErrReferenced) {
				return errors.BadRequest(errors.ErrBadRequest, "Address is used by existing orders")
			}
			return err
		}

		if !address.IsDefault {
			return nil
		}
		remaining, err := s.addressRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return nil
		}
		next := remaining[0]
		next.IsDefault = true
		util.Logger.Info("默认地址已转移", zap.Int("address_id", next.ID))
		return s.addressRepo.Update(ctx, next)
	})
}

func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, addressID int) (*model.Address, error) {
	var address *model.Address
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		address, err = s.loadOwned(ctx, userID, addressID)
		if err != nil {
			return err
		}
		if address.IsDefault {
			return nil
		}
		if err := s.addressRepo.ClearDefault(ctx, userID); err != nil {
			return err
		}
		address.IsDefault = true
		return s.addressRepo.Update(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}
