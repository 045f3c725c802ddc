package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/repository/interfaces"
	"coffeeshop-backend/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const orderColumns = `id, user_id, order_number, order_date, status, subtotal, tax, delivery_fee, total_amount,
	payment_method, payment_id, paid, delivery_address_id, special_instructions,
	estimated_delivery_time, actual_delivery_time, created_at, updated_at`

type orderRepository struct {
	base
}

var _ interfaces.OrderRepository = (*orderRepository)(nil)

func NewOrderRepository(db *sql.DB) *orderRepository {
	return &orderRepository{base{db}}
}

func scanOrder(row interface{ Scan(...interface{}) error }) (*model.Order, error) {
	var o model.Order
	var estimated, actual sql.NullTime
	err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.OrderDate, &o.Status, &o.Subtotal, &o.Tax,
		&o.DeliveryFee, &o.TotalAmount, &o.PaymentMethod, &o.PaymentID, &o.Paid, &o.DeliveryAddressID,
		&o.SpecialInstructions, &estimated, &actual, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if estimated.Valid {
		o.EstimatedDeliveryTime = &estimated.Time
	}
	if actual.Valid {
		o.ActualDeliveryTime = &actual.Time
	}
	return &o, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create 写入订单及其全部订单项，应在事务中调用
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	util.Logger.Info("创建订单", zap.String("order_number", order.OrderNumber), zap.Int("user_id", order.UserID))
	db := r.conn(ctx)

	result, err := db.ExecContext(ctx, `
		INSERT INTO orders (user_id, order_number, order_date, status, subtotal, tax, delivery_fee, total_amount,
			payment_method, payment_id, paid, delivery_address_id, special_instructions, estimated_delivery_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.UserID, order.OrderNumber, order.OrderDate, order.Status, order.Subtotal, order.Tax,
		order.DeliveryFee, order.TotalAmount, order.PaymentMethod, order.PaymentID, order.Paid,
		order.DeliveryAddressID, order.SpecialInstructions, nullTime(order.EstimatedDeliveryTime))
	if err != nil {
		util.Logger.Error("创建订单失败", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = int(id)

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		res, err := db.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price, size, customizations, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.OrderID, item.ProductID, item.Quantity, item.Price, item.Size, item.Customizations, item.Notes)
		if err != nil {
			util.Logger.Error("创建订单项失败", zap.Error(err), zap.Int("order_id", order.ID))
			return fmt.Errorf("insert order item: %w", err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		item.ID = int(itemID)
	}

	util.Logger.Info("订单创建成功", zap.Int("order_id", order.ID), zap.Int("items", len(order.Items)))
	return nil
}

// FindByID 读取订单和订单项，订单项带上商品名称和图片
func (r *orderRepository) FindByID(ctx context.Context, id int) (*model.Order, error) {
	order, err := scanOrder(r.conn(ctx).QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询订单失败", zap.Error(err), zap.Int("order_id", id))
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}

	if err := r.loadItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int]*model.Order, len(orders))
	args := make([]interface{}, 0, len(orders))
	for _, o := range orders {
		o.Items = make([]model.OrderItem, 0)
		byID[o.ID] = o
		args = append(args, o.ID)
	}

	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, ''), COALESCE(p.image_url, ''),
			oi.quantity, oi.price, oi.size, oi.customizations, oi.notes
		FROM order_items oi LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id IN (`+placeholders(len(args))+`) ORDER BY oi.id`, args...)
	if err != nil {
		util.Logger.Error("查询订单项失败", zap.Error(err))
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductImage,
			&item.Quantity, &item.Price, &item.Size, &item.Customizations, &item.Notes); err != nil {
			return err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int, status model.OrderStatus, actualDelivery *time.Time) error {
	util.Logger.Info("更新订单状态", zap.Int("order_id", id), zap.String("status", string(status)))
	query := "UPDATE orders SET status = ? WHERE id = ?"
	args := []interface{}{status, id}
	if actualDelivery != nil {
		query = "UPDATE orders SET status = ?, actual_delivery_time = ? WHERE id = ?"
		args = []interface{}{status, *actualDelivery, id}
	}
	if _, err := r.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		util.Logger.Error("更新订单状态失败", zap.Error(err), zap.Int("order_id", id))
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

// FindSummariesByUser 用户的订单摘要，按下单时间倒序
func (r *orderRepository) FindSummariesByUser(ctx context.Context, userID int, page model.PageRequest) ([]*model.OrderSummary, int64, error) {
	var total int64
	if err := r.conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT o.id, o.order_number, o.order_date, o.status, o.total_amount,
			(SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id)
		FROM orders o WHERE o.user_id = ?
		ORDER BY o.order_date DESC, o.id DESC LIMIT ? OFFSET ?`, userID, page.Size, page.Offset())
	if err != nil {
		util.Logger.Error("查询订单列表失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	summaries := make([]*model.OrderSummary, 0)
	for rows.Next() {
		var s model.OrderSummary
		if err := rows.Scan(&s.ID, &s.OrderNumber, &s.OrderDate, &s.Status, &s.TotalAmount, &s.ItemCount); err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, &s)
	}
	return summaries, total, rows.Err()
}

func statusArgs(statuses []model.OrderStatus) []interface{} {
	args := make([]interface{}, 0, len(statuses))
	for _, s := range statuses {
		args = append(args, string(s))
	}
	return args
}

// FindByUserAndStatuses 按下单时间倒序返回指定状态的订单
func (r *orderRepository) FindByUserAndStatuses(ctx context.Context, userID int, statuses []model.OrderStatus) ([]*model.Order, error) {
	if len(statuses) == 0 {
		return []*model.Order{}, nil
	}
	args := append([]interface{}{userID}, statusArgs(statuses)...)
	rows, err := r.conn(ctx).QueryContext(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE user_id = ? AND status IN (`+placeholders(len(statuses))+`)
		ORDER BY order_date DESC, id DESC`, args...)
	if err != nil {
		util.Logger.Error("查询进行中订单失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("list orders by status: %w", err)
	}

	orders := make([]*model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) CountByUser(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE user_id = ?", userID).Scan(&count)
	return count, err
}

func (r *orderRepository) CountByUserAndStatuses(ctx context.Context, userID int, statuses []model.OrderStatus) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	var count int
	args := append([]interface{}{userID}, statusArgs(statuses)...)
	err := r.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM orders
		WHERE user_id = ? AND status IN (`+placeholders(len(statuses))+`)`, args...).Scan(&count)
	return count, err
}

// HasDeliveredProduct 用户是否有包含该商品且已送达的订单
func (r *orderRepository) HasDeliveredProduct(ctx context.Context, userID, productID int) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM orders o JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = ? AND oi.product_id = ? AND o.status = ?
		)`, userID, productID, string(model.OrderStatusDelivered)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check delivered product: %w", err)
	}
	return exists, nil
}

// CountByStatus 统计时间窗口内各状态的订单数
func (r *orderRepository) CountByStatus(ctx context.Context, from, to time.Time) (map[model.OrderStatus]int, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT status, COUNT(*) FROM orders
		WHERE order_date >= ? AND order_date < ? GROUP BY status`, from, to)
	if err != nil {
		util.Logger.Error("统计订单状态失败", zap.Error(err))
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.OrderStatus]int)
	for rows.Next() {
		var status model.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *orderRepository) RevenueByStatus(ctx context.Context, status model.OrderStatus, from, to time.Time) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := r.conn(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM orders
		WHERE status = ? AND order_date >= ? AND order_date < ?`, string(status), from, to).Scan(&revenue)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	return revenue, nil
}
