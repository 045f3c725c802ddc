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

const addressColumns = `id, user_id, label, address_line1, address_line2, city, state, zip_code, country,
	latitude, longitude, is_default, delivery_instructions, created_at, updated_at`

type addressRepository struct {
	base
}

var _ interfaces.AddressRepository = (*addressRepository)(nil)

func NewAddressRepository(db *sql.DB) *addressRepository {
	return &addressRepository{base{db}}
}

func scanAddress(row interface{ Scan(...interface{}) error }) (*model.Address, error) {
	var a model.Address
	var lat, lng sql.NullFloat64
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State,
		&a.ZipCode, &a.Country, &lat, &lng, &a.IsDefault, &a.DeliveryInstructions, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Latitude = floatPtr(lat)
	a.Longitude = floatPtr(lng)
	return &a, nil
}

// Create 创建一个新地址
func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	util.Logger.Info("Repository: 开始创建地址", zap.Int("user_id", address.UserID))

	query := `INSERT INTO addresses
              (user_id, label, address_line1, address_line2, city, state, zip_code, country,
               latitude, longitude, is_default, delivery_instructions)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.conn(ctx).ExecContext(ctx, query,
		address.UserID, address.Label, address.AddressLine1, address.AddressLine2,
		address.City, address.State, address.ZipCode, address.Country,
		nullFloat(address.Latitude), nullFloat(address.Longitude),
		address.IsDefault, address.DeliveryInstructions)
	if err != nil {
		util.Logger.Error("执行SQL失败", zap.Error(err), zap.Int("user_id", address.UserID))
		return fmt.Errorf("insert address: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	address.ID = int(id)

	util.Logger.Info("Repository: 地址创建成功", zap.Int("address_id", address.ID))
	return nil
}

// FindByID 按ID获取地址
func (r *addressRepository) FindByID(ctx context.Context, id int) (*model.Address, error) {
	row := r.conn(ctx).QueryRowContext(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = ?`, id)
	address, err := scanAddress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("获取地址失败", zap.Error(err), zap.Int("address_id", id))
		return nil, fmt.Errorf("find address %d: %w", id, err)
	}
	return address, nil
}

// ListByUser 默认地址排在最前，其余按创建时间倒序
func (r *addressRepository) ListByUser(ctx context.Context, userID int) ([]*model.Address, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `SELECT `+addressColumns+` FROM addresses
		WHERE user_id = ? ORDER BY is_default DESC, created_at DESC, id DESC`, userID)
	if err != nil {
		util.Logger.Error("获取地址列表失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]*model.Address, 0)
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, address)
	}
	return addresses, rows.Err()
}

func (r *addressRepository) CountByUser(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM addresses WHERE user_id = ?", userID).Scan(&count)
	return count, err
}

// Update 更新地址
func (r *addressRepository) Update(ctx context.Context, address *model.Address) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE addresses
		SET label = ?, address_line1 = ?, address_line2 = ?, city = ?, state = ?, zip_code = ?, country = ?,
			latitude = ?, longitude = ?, is_default = ?, delivery_instructions = ?
		WHERE id = ?`,
		address.Label, address.AddressLine1, address.AddressLine2, address.City, address.State,
		address.ZipCode, address.Country, nullFloat(address.Latitude), nullFloat(address.Longitude),
		address.IsDefault, address.DeliveryInstructions, address.ID)
	if err != nil {
		util.Logger.Error("更新地址失败", zap.Error(err), zap.Int("address_id", address.ID))
		return fmt.Errorf("update address %d: %w", address.ID, err)
	}
	return nil
}

// Delete 删除地址，被订单引用时返回 ErrReferenced
func (r *addressRepository) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM addresses WHERE id = ?", id)
	if err != nil {
		util.Logger.Error("删除地址失败", zap.Error(err), zap.Int("address_id", id))
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete address %d: %w", id, interfaces.ErrReferenced)
		}
		return fmt.Errorf("delete address %d: %w", id, err)
	}
	return nil
}

// ClearDefault 取消用户的所有默认地址
func (r *addressRepository) ClearDefault(ctx context.Context, userID int) error {
	_, err := r.conn(ctx).ExecContext(ctx,
		"UPDATE addresses SET is_default = false WHERE user_id = ? AND is_default = true", userID)
	if err != nil {
		util.Logger.Error("重置默认地址失败", zap.Error(err), zap.Int("user_id", userID))
		return fmt.Errorf("clear default address: %w", err)
	}
	return nil
}
