package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/repository/interfaces"
	"coffeeshop-backend/internal/util"

	"go.uber.org/zap"
)

const reviewSelect = `SELECT r.id, r.product_id, r.user_id, u.full_name, r.rating, r.comment, r.verified_purchase,
	r.created_at, r.updated_at
	FROM reviews r JOIN users u ON u.id = r.user_id`

type reviewRepository struct {
	base
}

var _ interfaces.ReviewRepository = (*reviewRepository)(nil)

func NewReviewRepository(db *sql.DB) *reviewRepository {
	return &reviewRepository{base{db}}
}

func scanReview(row interface{ Scan(...interface{}) error }) (*model.Review, error) {
	var rv model.Review
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment,
		&rv.VerifiedPurchase, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	util.Logger.Info("创建评价", zap.Int("product_id", review.ProductID), zap.Int("user_id", review.UserID))
	result, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO reviews (product_id, user_id, rating, comment, verified_purchase)
		VALUES (?, ?, ?, ?, ?)`,
		review.ProductID, review.UserID, review.Rating, review.Comment, review.VerifiedPurchase)
	if err != nil {
		util.Logger.Error("创建评价失败", zap.Error(err))
		if isDuplicateEntry(err) {
			return fmt.Errorf("insert review: %w", interfaces.ErrDuplicate)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	review.ID = int(id)
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id int) (*model.Review, error) {
	review, err := scanReview(r.conn(ctx).QueryRowContext(ctx, reviewSelect+" WHERE r.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询评价失败", zap.Error(err), zap.Int("review_id", id))
		return nil, fmt.Errorf("find review %d: %w", id, err)
	}
	return review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *model.Review) error {
	_, err := r.conn(ctx).ExecContext(ctx, "UPDATE reviews SET rating = ?, comment = ? WHERE id = ?",
		review.Rating, review.Comment, review.ID)
	if err != nil {
		util.Logger.Error("更新评价失败", zap.Error(err), zap.Int("review_id", review.ID))
		return fmt.Errorf("update review %d: %w", review.ID, err)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id); err != nil {
		util.Logger.Error("删除评价失败", zap.Error(err), zap.Int("review_id", id))
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	return nil
}

// FindByProduct 按创建时间倒序分页
func (r *reviewRepository) FindByProduct(ctx context.Context, productID int, page model.PageRequest) ([]*model.Review, int64, error) {
	var total int64
	err := r.conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews WHERE product_id = ?", productID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := r.conn(ctx).QueryContext(ctx, reviewSelect+` WHERE r.product_id = ?
		ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?`, productID, page.Size, page.Offset())
	if err != nil {
		util.Logger.Error("查询评价列表失败", zap.Error(err), zap.Int("product_id", productID))
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*model.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	return reviews, total, rows.Err()
}

func (r *reviewRepository) ExistsByUserAndProduct(ctx context.Context, userID, productID int) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id = ? AND product_id = ?)", userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check review existence: %w", err)
	}
	return exists, nil
}

// RatingsByProduct 返回商品的全部评分，用于重新计算平均分
func (r *reviewRepository) RatingsByProduct(ctx context.Context, productID int) ([]int, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, "SELECT rating FROM reviews WHERE product_id = ?", productID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}
