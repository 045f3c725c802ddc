package interfaces

import (
	"context"

	"coffeeshop-backend/internal/model"

	"github.com/shopspring/decimal"
)

// ProductRepository 商品仓库，列表查询只返回上架商品
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id int) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id int) error
	FindAvailable(ctx context.Context, page model.PageRequest) ([]*model.Product, int64, error)
	FindByCategory(ctx context.Context, category model.ProductCategory, page model.PageRequest) ([]*model.Product, int64, error)
	Search(ctx context.Context, query string, page model.PageRequest) ([]*model.Product, int64, error)
	FindFeatured(ctx context.Context) ([]*model.Product, error)
	FindTopRated(ctx context.Context, limit int) ([]*model.Product, error)
	UpdateRating(ctx context.Context, id int, rating decimal.Decimal, reviewCount int) error
	UpdateImage(ctx context.Context, id int, imageURL string) error
}

// ReviewRepository 商品评价仓库
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id int) (*model.Review, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id int) error
	FindByProduct(ctx context.Context, productID int, page model.PageRequest) ([]*model.Review, int64, error)
	ExistsByUserAndProduct(ctx context.Context, userID, productID int) (bool, error)
	RatingsByProduct(ctx context.Context, productID int) ([]int, error)
}
