package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetStats(ctx context.Context, from, to time.Time) (*model.OrderStats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderStats), args.Error(1)
}

var _ service.StatsServiceInterface = (*MockStatsService)(nil)

func TestGetStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(MockStatsService)
	r := gin.New()
	r.GET("/admin/stats", NewAdminHandler(svc).GetStats)

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.On("GetStats", mock.Anything, from, to).Return(&model.OrderStats{TotalUsers: 4}, nil)
	svc.On("GetStats", mock.Anything, time.Time{}, time.Time{}).Return(&model.OrderStats{}, nil)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{name: "date window", query: "?from=2026-05-01&to=2026-05-31", status: http.StatusOK},
		{name: "rfc3339 window", query: "?from=2026-05-01T00:00:00Z&to=2026-06-01T00:00:00Z", status: http.StatusOK},
		{name: "default window", query: "", status: http.StatusOK},
		{name: "bad from", query: "?from=yesterday", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats"+tt.query, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
	svc.AssertNumberOfCalls(t, "GetStats", 3)
}
