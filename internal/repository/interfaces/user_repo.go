package interfaces

import (
	"context"

	"coffeeshop-backend/internal/model"
)

// UserRepository 接口定义了用户仓库应该实现的方法，查找不到时返回 nil, nil
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Count(ctx context.Context) (int, error)
}

// AddressRepository 配送地址仓库
type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error
	FindByID(ctx context.Context, id int) (*model.Address, error)
	ListByUser(ctx context.Context, userID int) ([]*model.Address, error)
	CountByUser(ctx context.Context, userID int) (int, error)
	Update(ctx context.Context, address *model.Address) error
	Delete(ctx context.Context, id int) error
	ClearDefault(ctx context.Context, userID int) error
}
