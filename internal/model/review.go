package model

import "time"

// Review 用户对商品的评价，每个用户对同一商品只能评价一次
type Review struct {
	ID               int       `json:"id"`
	ProductID        int       `json:"product_id"`
	UserID           int       `json:"user_id"`
	UserName         string    `json:"user_name"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment,omitempty"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=1000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=1000"`
}
