package interfaces

import (
	"context"
	"time"

	"coffeeshop-backend/internal/model"

	"github.com/shopspring/decimal"
)

// OrderRepository 订单仓库，订单项随订单一起读写
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id int) (*model.Order, error)
	UpdateStatus(ctx context.Context, id int, status model.OrderStatus, actualDelivery *time.Time) error
	FindSummariesByUser(ctx context.Context, userID int, page model.PageRequest) ([]*model.OrderSummary, int64, error)
	FindByUserAndStatuses(ctx context.Context, userID int, statuses []model.OrderStatus) ([]*model.Order, error)
	CountByUser(ctx context.Context, userID int) (int, error)
	CountByUserAndStatuses(ctx context.Context, userID int, statuses []model.OrderStatus) (int, error)
	HasDeliveredProduct(ctx context.Context, userID, productID int) (bool, error)
	CountByStatus(ctx context.Context, from, to time.Time) (map[model.OrderStatus]int, error)
	RevenueByStatus(ctx context.Context, status model.OrderStatus, from, to time.Time) (decimal.Decimal, error)
}
