package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/repository/interfaces"
	"coffeeshop-backend/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const productColumns = `id, name, description, price, image_url, category, available, featured, rating,
	review_count, preparation_time_minutes, calories, created_at, updated_at`

type productRepository struct {
	base
}

var _ interfaces.ProductRepository = (*productRepository)(nil)

func NewProductRepository(db *sql.DB) *productRepository {
	return &productRepository{base{db}}
}

func scanProduct(row interface{ Scan(...interface{}) error }) (*model.Product, error) {
	var p model.Product
	var prep, calories sql.NullInt64
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.Available,
		&p.Featured, &p.Rating, &p.ReviewCount, &prep, &calories, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.PrepTimeMinutes = intPtr(prep)
	p.Calories = intPtr(calories)
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	util.Logger.Info("创建商品", zap.String("name", product.Name))
	result, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO products (name, description, price, image_url, category, available, featured,
			review_count, preparation_time_minutes, calories)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.Name, product.Description, product.Price, product.ImageURL, product.Category,
		product.Available, product.Featured, product.ReviewCount,
		nullInt(product.PrepTimeMinutes), nullInt(product.Calories))
	if err != nil {
		util.Logger.Error("创建商品失败", zap.Error(err))
		return fmt.Errorf("insert product: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	product.ID = int(id)
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id int) (*model.Product, error) {
	row := r.conn(ctx).QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询商品失败", zap.Error(err), zap.Int("product_id", id))
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return product, nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, image_url = ?, category = ?, available = ?, featured = ?,
			preparation_time_minutes = ?, calories = ?
		WHERE id = ?`,
		product.Name, product.Description, product.Price, product.ImageURL, product.Category,
		product.Available, product.Featured, nullInt(product.PrepTimeMinutes), nullInt(product.Calories), product.ID)
	if err != nil {
		util.Logger.Error("更新商品失败", zap.Error(err), zap.Int("product_id", product.ID))
		return fmt.Errorf("update product %d: %w", product.ID, err)
	}
	return nil
}

// Delete 删除商品，评价随之级联删除；已有订单引用时返回 ErrReferenced
func (r *productRepository) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		util.Logger.Error("删除商品失败", zap.Error(err), zap.Int("product_id", id))
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete product %d: %w", id, interfaces.ErrReferenced)
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

// pageQuery 执行计数和分页查询，where 中不包含 WHERE 关键字
func (r *productRepository) pageQuery(ctx context.Context, where string, args []interface{}, page model.PageRequest) ([]*model.Product, int64, error) {
	var total int64
	if err := r.conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE "+where, args...).Scan(&total); err != nil {
		util.Logger.Error("统计商品数量失败", zap.Error(err))
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	products, err := r.list(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Product, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		util.Logger.Error("查询商品列表失败", zap.Error(err))
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]*model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepository) FindAvailable(ctx context.Context, page model.PageRequest) ([]*model.Product, int64, error) {
	return r.pageQuery(ctx, "available = true", nil, page)
}

func (r *productRepository) FindByCategory(ctx context.Context, category model.ProductCategory, page model.PageRequest) ([]*model.Product, int64, error) {
	return r.pageQuery(ctx, "category = ? AND available = true", []interface{}{category}, page)
}

// Search 对名称和描述做不区分大小写的子串匹配
func (r *productRepository) Search(ctx context.Context, query string, page model.PageRequest) ([]*model.Product, int64, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return r.pageQuery(ctx, "available = true AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)",
		[]interface{}{pattern, pattern}, page)
}

func (r *productRepository) FindFeatured(ctx context.Context) ([]*model.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products
		WHERE featured = true AND available = true ORDER BY created_at DESC, id DESC`)
}

func (r *productRepository) FindTopRated(ctx context.Context, limit int) ([]*model.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products
		WHERE available = true AND rating IS NOT NULL
		ORDER BY rating DESC, review_count DESC LIMIT ?`, limit)
}

func (r *productRepository) UpdateRating(ctx context.Context, id int, rating decimal.Decimal, reviewCount int) error {
	util.Logger.Debug("更新商品评分", zap.Int("product_id", id), zap.String("rating", rating.StringFixed(2)))
	_, err := r.conn(ctx).ExecContext(ctx, "UPDATE products SET rating = ?, review_count = ? WHERE id = ?",
		rating, reviewCount, id)
	if err != nil {
		return fmt.Errorf("update product rating: %w", err)
	}
	return nil
}

func (r *productRepository) UpdateImage(ctx context.Context, id int, imageURL string) error {
	_, err := r.conn(ctx).ExecContext(ctx, "UPDATE products SET image_url = ? WHERE id = ?", imageURL, id)
	if err != nil {
		return fmt.Errorf("update product image: %w", err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
