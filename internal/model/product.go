package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// 金额以数字而不是字符串输出
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductCategory 商品分类
type ProductCategory string

const (
	CategoryHotCoffee   ProductCategory = "HOT_COFFEE"
	CategoryIcedCoffee  ProductCategory = "ICED_COFFEE"
	CategoryEspresso    ProductCategory = "ESPRESSO"
	CategoryLatte       ProductCategory = "LATTE"
	CategoryCappuccino  ProductCategory = "CAPPUCCINO"
	CategoryMacchiato   ProductCategory = "MACCHIATO"
	CategoryMocha       ProductCategory = "MOCHA"
	CategoryFrappuccino ProductCategory = "FRAPPUCCINO"
	CategoryTea         ProductCategory = "TEA"
	CategorySmoothie    ProductCategory = "SMOOTHIE"
	CategoryPastry      ProductCategory = "PASTRY"
	CategorySandwich    ProductCategory = "SANDWICH"
	CategorySalad       ProductCategory = "SALAD"
	CategoryDessert     ProductCategory = "DESSERT"
)

var productCategories = map[ProductCategory]bool{
	CategoryHotCoffee: true, CategoryIcedCoffee: true, CategoryEspresso: true, CategoryLatte: true,
	CategoryCappuccino: true, CategoryMacchiato: true, CategoryMocha: true, CategoryFrappuccino: true,
	CategoryTea: true, CategorySmoothie: true, CategoryPastry: true, CategorySandwich: true,
	CategorySalad: true, CategoryDessert: true,
}

func (c ProductCategory) Valid() bool {
	return productCategories[c]
}

// Product 菜单上的商品
type Product struct {
	ID              int                 `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	Price           decimal.Decimal     `json:"price"`
	ImageURL        string              `json:"image_url,omitempty"`
	Category        ProductCategory     `json:"category"`
	Available       bool                `json:"available"`
	Featured        bool                `json:"featured"`
	Rating          decimal.NullDecimal `json:"rating"`
	ReviewCount     int                 `json:"review_count"`
	PrepTimeMinutes *int                `json:"preparation_time_minutes,omitempty"`
	Calories        *int                `json:"calories,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// UpdateRating 根据全部评分重新计算平均分（保留两位小数）和评论数
func (p *Product) UpdateRating(ratings []int) {
	p.ReviewCount = len(ratings)
	if len(ratings) == 0 {
		p.Rating = decimal.NewNullDecimal(decimal.Zero)
		return
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := decimal.NewFromInt(int64(sum)).DivRound(decimal.NewFromInt(int64(len(ratings))), 2)
	p.Rating = decimal.NewNullDecimal(avg)
}

type CreateProductRequest struct {
	Name            string          `json:"name" binding:"required,min=2,max=100"`
	Description     string          `json:"description" binding:"max=1000"`
	Price           decimal.Decimal `json:"price" binding:"required,gte=0.01"`
	ImageURL        string          `json:"image_url" binding:"max=500"`
	Category        ProductCategory `json:"category" binding:"required,product_category"`
	PrepTimeMinutes *int            `json:"preparation_time_minutes" binding:"omitempty,min=0"`
	Calories        *int            `json:"calories" binding:"omitempty,min=0"`
}

func (r CreateProductRequest) ToProduct() *Product {
	return &Product{
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		ImageURL:        r.ImageURL,
		Category:        r.Category,
		Available:       true,
		Featured:        false,
		PrepTimeMinutes: r.PrepTimeMinutes,
		Calories:        r.Calories,
	}
}

// UpdateProductRequest 只修改请求中出现的字段
type UpdateProductRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=2,max=100"`
	Description     *string          `json:"description" binding:"omitempty,max=1000"`
	Price           *decimal.Decimal `json:"price" binding:"omitempty,gte=0.01"`
	ImageURL        *string          `json:"image_url" binding:"omitempty,max=500"`
	Category        *ProductCategory `json:"category" binding:"omitempty,product_category"`
	Available       *bool            `json:"available"`
	Featured        *bool            `json:"featured"`
	PrepTimeMinutes *int             `json:"preparation_time_minutes" binding:"omitempty,min=0"`
	Calories        *int             `json:"calories" binding:"omitempty,min=0"`
}

func (r UpdateProductRequest) Apply(p *Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Available != nil {
		p.Available = *r.Available
	}
	if r.Featured != nil {
		p.Featured = *r.Featured
	}
	if r.PrepTimeMinutes != nil {
		p.PrepTimeMinutes = r.PrepTimeMinutes
	}
	if r.Calories != nil {
		p.Calories = r.Calories
	}
}
