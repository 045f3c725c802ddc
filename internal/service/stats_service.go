package service

import (
	"context"
	"time"

	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/repository/interfaces"
)

const defaultStatsWindow = 30 * 24 * time.Hour

// ErrorCounter 提供按错误码统计的请求错误数
type ErrorCounter interface {
	GetErrorCounts() map[errors.ErrorCode]int
}

type StatsService struct {
	userRepo  interfaces.UserRepository
	orderRepo interfaces.OrderRepository
	monitor   ErrorCounter
	now       func() time.Time
}

type StatsServiceInterface interface {
	GetStats(ctx context.Context, from, to time.Time) (*model.OrderStats, error)
}

var _ StatsServiceInterface = (*StatsService)(nil)

func NewStatsService(userRepo interfaces.UserRepository, orderRepo interfaces.OrderRepository, monitor ErrorCounter) *StatsService {
	return &StatsService{
		userRepo:  userRepo,
		orderRepo: orderRepo,
		monitor:   monitor,
		now:       time.Now,
	}
}

// GetStats 统计时间窗口内的订单，窗口默认为最近30天
func (s *StatsService) GetStats(ctx context.Context, from, to time.Time) (*model.OrderStats, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-defaultStatsWindow)
	}
	if !from.Before(to) {
		return nil, errors.BadRequest(errors.ErrBadRequest, "'from' must be before 'to'")
	}

	counts, err := s.orderRepo.CountByStatus(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = make(map[model.OrderStatus]int)
	}
	// 没有订单的状态也输出 0
	for _, st := range model.AllOrderStatuses {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}

	revenue, err := s.orderRepo.RevenueByStatus(ctx, model.OrderStatusDelivered, from, to)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	errorCounts := make(map[int]int)
	if s.monitor != nil {
		for code, n := range s.monitor.GetErrorCounts() {
			errorCounts[int(code)] = n
		}
	}

	return &model.OrderStats{
		CountsByStatus:   counts,
		DeliveredRevenue: revenue,
		TotalUsers:       users,
		ErrorCounts:      errorCounts,
		From:             from,
		To:               to,
	}, nil
}
