package service

import (
	"context"
	"testing"
	"time"

	"coffeeshop-backend/internal/cache"
	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReviewService() (*ReviewService, *MockReviewRepository, *MockProductRepository, *MockOrderRepository) {
	reviews := new(MockReviewRepository)
	products := new(MockProductRepository)
	orders := new(MockOrderRepository)
	svc := NewReviewService(reviews, products, orders, &fakeTx{}, cache.NewMemoryCache(16, time.Minute))
	return svc, reviews, products, orders
}

func TestCreateReviewRecomputesRating(t *testing.T) {
	svc, reviews, products, orders := newReviewService()

	products.On("FindByID", mock.Anything, 3).Return(latte(), nil)
	reviews.On("ExistsByUserAndProduct", mock.Anything, 1, 3).Return(false, nil)
	orders.On("HasDeliveredProduct", mock.Anything, 1, 3).Return(true, nil)
	reviews.On("Create", mock.Anything, mock.AnythingOfType("*model.Review")).Return(nil).Run(func(args mock.Arguments) {
		r := args.Get(1).(*model.Review)
		assert.True(t, r.VerifiedPurchase)
		r.ID = 20
	})
	reviews.On("RatingsByProduct", mock.Anything, 3).Return([]int{3, 4, 5}, nil)
	products.On("UpdateRating", mock.Anything, 3, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString("4.0"))
	}), 3).Return(nil)
	reviews.On("FindByID", mock.Anything, 20).Return(&model.Review{ID: 20, ProductID: 3, UserID: 1, Rating: 5, VerifiedPurchase: true}, nil)

	review, err := svc.CreateReview(context.Background(), 1, 3, model.CreateReviewRequest{Rating: 5, Comment: "Great"})
	require.NoError(t, err)
	assert.Equal(t, 20, review.ID)
	products.AssertExpectations(t)
}

func TestCreateReviewDuplicate(t *testing.T) {
	svc, reviews, products, _ := newReviewService()
	products.On("FindByID", mock.Anything, 3).Return(latte(), nil)
	reviews.On("ExistsByUserAndProduct", mock.Anything, 1, 3).Return(true, nil)

	_, err := svc.CreateReview(context.Background(), 1, 3, model.CreateReviewRequest{Rating: 4})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "You have already reviewed this product", appErr.Message)
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteReviewPermissions(t *testing.T) {
	svc, reviews, products, _ := newReviewService()
	reviews.On("FindByID", mock.Anything, 20).Return(&model.Review{ID: 20, ProductID: 3, UserID: 1}, nil)
	reviews.On("Delete", mock.Anything, 20).Return(nil)
	reviews.On("RatingsByProduct", mock.Anything, 3).Return([]int{}, nil)
	products.On("UpdateRating", mock.Anything, 3, mock.Anything, 0).Return(nil)

	err := svc.DeleteReview(context.Background(), model.Principal{UserID: 2, Role: model.RoleCustomer}, 20)
	assert.True(t, errors.IsCode(err, errors.ErrReviewNotOwned))

	err = svc.DeleteReview(context.Background(), model.Principal{UserID: 9, Role: model.RoleAdmin}, 20)
	assert.NoError(t, err)
	products.AssertCalled(t, "UpdateRating", mock.Anything, 3, mock.Anything, 0)
}

func TestUpdateReviewOwnerOnly(t *testing.T) {
	svc, reviews, products, _ := newReviewService()
	existing := &model.Review{ID: 20, ProductID: 3, UserID: 1, Rating: 2, Comment: "meh"}
	reviews.On("FindByID", mock.Anything, 20).Return(existing, nil)
	reviews.On("Update", mock.Anything, existing).Return(nil)
	reviews.On("RatingsByProduct", mock.Anything, 3).Return([]int{4}, nil)
	products.On("UpdateRating", mock.Anything, 3, mock.Anything, 1).Return(nil)

	_, err := svc.UpdateReview(context.Background(), model.Principal{UserID: 9, Role: model.RoleAdmin}, 20, model.UpdateReviewRequest{})
	assert.True(t, errors.IsCode(err, errors.ErrReviewNotOwned))

	rating := 4
	review, err := svc.UpdateReview(context.Background(), model.Principal{UserID: 1, Role: model.RoleCustomer}, 20,
		model.UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, "meh", review.Comment)
}

func TestUpdateReviewReturnsStoredRow(t *testing.T) {
	svc, reviews, products, _ := newReviewService()
	before := &model.Review{ID: 21, ProductID: 3, UserID: 1, Rating: 2, UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	stored := &model.Review{ID: 21, ProductID: 3, UserID: 1, Rating: 5, UpdatedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	reviews.On("FindByID", mock.Anything, 21).Return(before, nil).Once()
	reviews.On("Update", mock.Anything, before).Return(nil)
	reviews.On("RatingsByProduct", mock.Anything, 3).Return([]int{5}, nil)
	products.On("UpdateRating", mock.Anything, 3, mock.Anything, 1).Return(nil)
	reviews.On("FindByID", mock.Anything, 21).Return(stored, nil).Once()

	rating := 5
	review, err := svc.UpdateReview(context.Background(), model.Principal{UserID: 1, Role: model.RoleCustomer}, 21,
		model.UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, stored.UpdatedAt, review.UpdatedAt)
}

func TestListReviewsUnknownProduct(t *testing.T) {
	svc, _, products, _ := newReviewService()
	products.On("FindByID", mock.Anything, 77).Return(nil, nil)

	_, err := svc.ListReviews(context.Background(), 77, model.NewPageRequest(0, 10))
	assert.True(t, errors.IsCode(err, errors.ErrProductNotFound))
}
