package service

import (
	"context"
	"testing"
	"time"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticCounter map[errors.ErrorCode]int

func (s staticCounter) GetErrorCounts() map[errors.ErrorCode]int { return s }

func TestGetStatsDefaultWindow(t *testing.T) {
	users := new(MockUserRepository)
	orders := new(MockOrderRepository)
	svc := NewStatsService(users, orders, staticCounter{errors.ErrOrderNotFound: 3})
	now := time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	from := now.Add(-30 * 24 * time.Hour)

	orders.On("CountByStatus", mock.Anything, from, now).
		Return(map[model.OrderStatus]int{model.OrderStatusDelivered: 4, model.OrderStatusPending: 1}, nil)
	orders.On("RevenueByStatus", mock.Anything, model.OrderStatusDelivered, from, now).
		Return(decimal.RequireFromString("51.56"), nil)
	users.On("Count", mock.Anything).Return(12, nil)

	stats, err := svc.GetStats(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, from, stats.From)
	assert.Equal(t, now, stats.To)
	assert.Len(t, stats.CountsByStatus, len(model.AllOrderStatuses))
	assert.Equal(t, 4, stats.CountsByStatus[model.OrderStatusDelivered])
	assert.Equal(t, 0, stats.CountsByStatus[model.OrderStatusCancelled])
	assert.Equal(t, "51.56", stats.DeliveredRevenue.StringFixed(2))
	assert.Equal(t, 12, stats.TotalUsers)
	assert.Equal(t, 3, stats.ErrorCounts[int(errors.ErrOrderNotFound)])
}

func TestGetStatsRejectsInvertedWindow(t *testing.T) {
	svc := NewStatsService(new(MockUserRepository), new(MockOrderRepository), nil)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetStats(context.Background(), to.Add(time.Hour), to)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}
