package service

import (
	"context"
	stderrors "errors"

	"coffeeshop-backend/internal/cache"
	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/repository/interfaces"
	"coffeeshop-backend/internal/util"

	"go.uber.org/zap"
)

// ReviewService 商品评价。每次写操作在同一事务内重新计算商品评分
type ReviewService struct {
	reviewRepo  interfaces.ReviewRepository
	productRepo interfaces.ProductRepository
	orderRepo   interfaces.OrderRepository
	tx          interfaces.TxManager
	cache       cache.Cache
}

type ReviewServiceInterface interface {
	ListReviews(ctx context.Context, productID int, page model.PageRequest) (model.Page[*model.Review], error)
	CreateReview(ctx context.Context, userID, productID int, req model.CreateReviewRequest) (*model.Review, error)
	UpdateReview(ctx context.Context, principal model.Principal, reviewID int, req model.UpdateReviewRequest) (*model.Review, error)
	DeleteReview(ctx context.Context, principal model.Principal, reviewID int) error
}

var _ ReviewServiceInterface = (*ReviewService)(nil)

func NewReviewService(reviewRepo interfaces.ReviewRepository, productRepo interfaces.ProductRepository,
	orderRepo interfaces.OrderRepository, tx interfaces.TxManager, c cache.Cache) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, productRepo: productRepo, orderRepo: orderRepo, tx: tx, cache: c}
}

func (s *ReviewService) requireProduct(ctx context.Context, productID int) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return errors.NotFound(errors.ErrProductNotFound, "Product not found with ID: %d", productID)
	}
	return nil
}

func (s *ReviewService) findReview(ctx context.Context, reviewID int) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, errors.NotFound(errors.ErrReviewNotFound, "Review not found with ID: %d", reviewID)
	}
	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, productID int, page model.PageRequest) (model.Page[*model.Review], error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return model.Page[*model.Review]{}, err
	}
	reviews, total, err := s.reviewRepo.FindByProduct(ctx, productID, page)
	if err != nil {
		return model.Page[*model.Review]{}, err
	}
	return model.NewPage(reviews, page, total), nil
}

// CreateReview 每个用户对同一商品只能评价一次；有已送达订单的标记为已购
func (s *ReviewService) CreateReview(ctx context.Context, userID, productID int, req model.CreateReviewRequest) (*model.Review, error) {
	var review *model.Review
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.requireProduct(ctx, productID); err != nil {
			return err
		}

		exists, err := s.reviewRepo.ExistsByUserAndProduct(ctx, userID, productID)
		if err != nil {
			return err
		}
		if exists {
			return errors.BadRequest(errors.ErrReviewExists, "You have already reviewed this product")
		}

		verified, err := s.orderRepo.HasDeliveredProduct(ctx, userID, productID)
		if err != nil {
			return err
		}

		created := &model.Review{
			ProductID:        productID,
			UserID:           userID,
			Rating:           req.Rating,
			Comment:          req.Comment,
			VerifiedPurchase: verified,
		}
		if err := s.reviewRepo.Create(ctx, created); err != nil {
			if stderrors.Is(err, interfaces.ErrDuplicate) {
				return errors.BadRequest(errors.ErrReviewExists, "You have already reviewed this product")
			}
			return err
		}

		if err := s.recomputeRating(ctx, productID); err != nil {
			return err
		}

		review, err = s.findReview(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	util.Logger.Info("评价创建成功", zap.Int("review_id", review.ID), zap.Int("product_id", productID))
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, principal model.Principal, reviewID int, req model.UpdateReviewRequest) (*model.Review, error) {
	var review *model.Review
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		review, err = s.findReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if review.UserID != principal.UserID {
			return errors.New(errors.ErrReviewNotOwned, "You can only modify your own reviews")
		}

		if req.Rating != nil {
			review.Rating = *req.Rating
		}
		if req.Comment != nil {
			review.Comment = *req.Comment
		}
		if err := s.reviewRepo.Update(ctx, review); err != nil {
			return err
		}
		if err := s.recomputeRating(ctx, review.ProductID); err != nil {
			return err
		}
		review, err = s.findReview(ctx, reviewID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return review, nil
}

// DeleteReview 作者本人或管理员可以删除
func (s *ReviewService) DeleteReview(ctx context.Context, principal model.Principal, reviewID int) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		review, err := s.findReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if review.UserID != principal.UserID && !principal.IsAdmin() {
			return errors.New(errors.ErrReviewNotOwned, "You can only delete your own reviews")
		}
		if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
			return err
		}
		return s.recomputeRating(ctx, review.ProductID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	util.Logger.Info("评价已删除", zap.Int("review_id", reviewID), zap.Int("by_user", principal.UserID))
	return nil
}

// recomputeRating 按全部评分重新计算平均分和评论数
func (s *ReviewService) recomputeRating(ctx context.Context, productID int) error {
	ratings, err := s.reviewRepo.RatingsByProduct(ctx, productID)
	if err != nil {
		return err
	}
	product := &model.Product{ID: productID}
	product.UpdateRating(ratings)
	return s.productRepo.UpdateRating(ctx, productID, product.Rating.Decimal, product.ReviewCount)
}

func (s *ReviewService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		util.Logger.Warn("清空商品缓存失败", zap.Error(err))
	}
}
