package service

import (
	"context"
	"strings"
	"time"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/metrics"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/repository/interfaces"
	"coffeeshop-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService 处理下单、查询、状态流转和取消
type OrderService struct {
	orderRepo   interfaces.OrderRepository
	userRepo    interfaces.UserRepository
	addressRepo interfaces.AddressRepository
	productRepo interfaces.ProductRepository
	tx          interfaces.TxManager
	notifier    Notifier
	now         func() time.Time
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, userID int, req model.CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, userID, orderID int) (*model.Order, error)
	ListOrders(ctx context.Context, userID int, page model.PageRequest) (model.Page[*model.OrderSummary], error)
	ActiveOrders(ctx context.Context, userID int) ([]*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int, status model.OrderStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, userID, orderID int) (*model.Order, error)
}

var _ OrderServiceInterface = (*OrderService)(nil)

func NewOrderService(orderRepo interfaces.OrderRepository, userRepo interfaces.UserRepository,
	addressRepo interfaces.AddressRepository, productRepo interfaces.ProductRepository,
	tx interfaces.TxManager, notifier Notifier) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		addressRepo: addressRepo,
		productRepo: productRepo,
		tx:          tx,
		notifier:    notifier,
		now:         time.Now,
	}
}

// GenerateOrderNumber 形如 ORD-1A2B3C4D
func GenerateOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateOrder 在一个事务内校验用户、地址和商品并写入订单，任一校验失败都不落库
func (s *OrderService) CreateOrder(ctx context.Context, userID int, req model.CreateOrderRequest) (*model.Order, error) {
	util.Logger.Info("开始创建订单", zap.Int("user_id", userID), zap.Int("items", len(req.Items)))

	var (
		order *model.Order
		user  *model.User
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return errors.NotFound(errors.ErrUserNotFound, "User not found with ID: %d", userID)
		}

		address, err := s.addressRepo.FindByID(ctx, req.DeliveryAddressID)
		if err != nil {
			return err
		}
		if address == nil {
			return errors.NotFound(errors.ErrAddressNotFound, "Address not found with ID: %d", req.DeliveryAddressID)
		}
		if address.UserID != userID {
			return errors.BadRequest(errors.ErrAddressNotOwned, "Address does not belong to the user")
		}

		now := s.now()
		eta := now.Add(model.EstimatedDeliveryWindow)
		order = &model.Order{
			UserID:                userID,
			OrderNumber:           GenerateOrderNumber(),
			OrderDate:             now,
			Status:                model.OrderStatusPending,
			DeliveryFee:           model.DefaultDeliveryFee,
			PaymentMethod:         req.PaymentMethod,
			DeliveryAddressID:     address.ID,
			DeliveryAddress:       address,
			SpecialInstructions:   req.SpecialInstructions,
			EstimatedDeliveryTime: &eta,
			Items:                 make([]model.OrderItem, 0, len(req.Items)),
		}

		for _, itemReq := range req.Items {
			product, err := s.productRepo.FindByID(ctx, itemReq.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return errors.NotFound(errors.ErrProductNotFound, "Product not found with ID: %d", itemReq.ProductID)
			}
			if !product.Available {
				return errors.BadRequest(errors.ErrProductUnavailable, "Product is not available: %s", product.Name)
			}

			order.AddItem(model.OrderItem{
				ProductID:      product.ID,
				ProductName:    product.Name,
				ProductImage:   product.ImageURL,
				Quantity:       itemReq.Quantity,
				Price:          product.Price,
				Size:           itemReq.Size,
				Customizations: itemReq.Customizations,
				Notes:          itemReq.Notes,
			})
		}

		return s.orderRepo.Create(ctx, order)
	})
	if err != nil {
		util.Logger.Warn("创建订单失败", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues(string(order.PaymentMethod)).Inc()
	util.Logger.Info("订单创建成功",
		zap.Int("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	s.notifier.SendOrderConfirmation(user, order)
	return order, nil
}

func (s *OrderService) findOrder(ctx context.Context, orderID int) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.NotFound(errors.ErrOrderNotFound, "Order not found with ID: %d", orderID)
	}
	return order, nil
}

func (s *OrderService) attachAddress(ctx context.Context, order *model.Order) error {
	address, err := s.addressRepo.FindByID(ctx, order.DeliveryAddressID)
	if err != nil {
		return err
	}
	order.DeliveryAddress = address
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int) (*model.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, errors.BadRequest(errors.ErrOrderNotOwned, "Order does not belong to the user")
	}
	if err := s.attachAddress(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders 按下单时间倒序分页
func (s *OrderService) ListOrders(ctx context.Context, userID int, page model.PageRequest) (model.Page[*model.OrderSummary], error) {
	summaries, total, err := s.orderRepo.FindSummariesByUser(ctx, userID, page)
	if err != nil {
		return model.Page[*model.OrderSummary]{}, err
	}
	return model.NewPage(summaries, page, total), nil
}

func (s *OrderService) ActiveOrders(ctx context.Context, userID int) ([]*model.Order, error) {
	orders, err := s.orderRepo.FindByUserAndStatuses(ctx, userID, model.ActiveOrderStatuses)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if err := s.attachAddress(ctx, o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateOrderStatus 允许任意状态之间切换，置为 DELIVERED 时记录实际送达时间
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, errors.Validation(map[string]string{"status": "invalid value: " + string(status)})
	}

	var order *model.Order
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.findOrder(ctx, orderID)
		if err != nil {
			return err
		}

		var delivered *time.Time
		if status == model.OrderStatusDelivered {
			now := s.now()
			delivered = &now
			order.ActualDeliveryTime = delivered
		}
		if err := s.orderRepo.UpdateStatus(ctx, orderID, status, delivered); err != nil {
			return err
		}
		util.Logger.Info("订单状态变更",
			zap.Int("order_id", orderID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(status)))
		order.Status = status
		return s.attachAddress(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusChanges.WithLabelValues(string(status)).Inc()
	return order, nil
}

// CancelOrder 只有下单用户可以取消，已送达或已取消的订单不能取消
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID int) (*model.Order, error) {
	var order *model.Order
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.findOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return errors.BadRequest(errors.ErrOrderNotOwned, "Order does not belong to the user")
		}
		if !order.Status.Cancellable() {
			return errors.BadRequest(errors.ErrOrderNotCancellable, "Order cannot be cancelled")
		}

		if err := s.orderRepo.UpdateStatus(ctx, orderID, model.OrderStatusCancelled, nil); err != nil {
			return err
		}
		order.Status = model.OrderStatusCancelled
		return s.attachAddress(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusChanges.WithLabelValues(string(model.OrderStatusCancelled)).Inc()
	util.Logger.Info("订单已取消", zap.Int("order_id", orderID), zap.Int("user_id", userID))
	return order, nil
}
