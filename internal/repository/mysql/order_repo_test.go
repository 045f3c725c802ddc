package mysql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"coffeeshop-backend/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRowColumns = []string{"id", "user_id", "order_number", "order_date", "status", "subtotal", "tax",
	"delivery_fee", "total_amount", "payment_method", "payment_id", "paid", "delivery_address_id",
	"special_instructions", "estimated_delivery_time", "actual_delivery_time", "created_at", "updated_at"}

var itemRowColumns = []string{"id", "order_id", "product_id", "name", "image_url", "quantity", "price",
	"size", "customizations", "notes"}

func TestOrderRepositoryCreateInsertsItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs(10, 3, 2, sqlmock.AnyArg(), "LARGE", "", "").
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs(10, 5, 1, sqlmock.AnyArg(), "", "oat milk", "").
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectCommit()

	order := &model.Order{UserID: 1, OrderNumber: "ORD-ABCDEF12", Status: model.OrderStatusPending,
		DeliveryFee: model.DefaultDeliveryFee, PaymentMethod: model.PaymentCash, DeliveryAddressID: 2}
	order.AddItem(model.OrderItem{ProductID: 3, Quantity: 2, Price: decimal.RequireFromString("4.50"), Size: model.SizeLarge})
	order.AddItem(model.OrderItem{ProductID: 5, Quantity: 1, Price: decimal.RequireFromString("3.00"), Customizations: "oat milk"})

	repo := NewOrderRepository(db)
	err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		return repo.Create(ctx, order)
	})
	require.NoError(t, err)

	assert.Equal(t, 10, order.ID)
	assert.Equal(t, 100, order.Items[0].ID)
	assert.Equal(t, 10, order.Items[1].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryFindByIDLoadsItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).AddRow(10, 1, "ORD-ABCDEF12", now, "PENDING",
			"9.00", "0.90", "2.99", "12.89", "CASH", "", false, 2, "", now.Add(30*time.Minute), nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items oi LEFT JOIN products p")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).
			AddRow(100, 10, 3, "Flat White", "", 2, "4.50", "LARGE", "", ""))

	order, err := NewOrderRepository(db).FindByID(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.True(t, decimal.RequireFromString("12.89").Equal(order.TotalAmount))
	require.NotNil(t, order.EstimatedDeliveryTime)
	assert.Nil(t, order.ActualDeliveryTime)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Flat White", order.Items[0].ProductName)
	assert.Equal(t, model.SizeLarge, order.Items[0].Size)
}

func TestOrderRepositoryUpdateStatusDelivered(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	delivered := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = ?, actual_delivery_time = ? WHERE id = ?")).
		WithArgs("DELIVERED", delivered, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewOrderRepository(db).UpdateStatus(context.Background(), 10, model.OrderStatusDelivered, &delivered)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryCountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from, to := time.Now().AddDate(0, 0, -30), time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PENDING", 4).AddRow("DELIVERED", 9))

	counts, err := NewOrderRepository(db).CountByStatus(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 4, counts[model.OrderStatusPending])
	assert.Equal(t, 9, counts[model.OrderStatusDelivered])
}

func TestOrderRepositoryHasDeliveredProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("JOIN order_items oi ON oi.order_id = o.id")).
		WithArgs(1, 3, "DELIVERED").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewOrderRepository(db).HasDeliveredProduct(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.True(t, ok)
}
