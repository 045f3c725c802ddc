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

const userColumns = `id, full_name, email, password_hash, phone_number, address, profile_image_url, role, enabled, created_at, updated_at`

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	base
}

var _ interfaces.UserRepository = (*userRepository)(nil)

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{base{db}}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	var user model.User
	var phone sql.NullString
	err := row.Scan(&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &phone, &user.Address,
		&user.ProfileImageURL, &user.Role, &user.Enabled, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.PhoneNumber = phone.String
	return &user, nil
}

// Create 创建一个新用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	util.Logger.Info("尝试创建新用户", zap.String("email", user.Email))
	query := `INSERT INTO users (full_name, email, password_hash, phone_number, address, profile_image_url, role, enabled)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.conn(ctx).ExecContext(ctx, query, user.FullName, user.Email, user.PasswordHash,
		nullString(user.PhoneNumber), user.Address, user.ProfileImageURL, user.Role, user.Enabled)
	if err != nil {
		util.Logger.Error("创建用户失败", zap.Error(err))
		return fmt.Errorf("insert user: %w", userConflict(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新用户ID失败", zap.Error(err))
		return err
	}
	user.ID = int(id)
	util.Logger.Info("用户创建成功", zap.Int("user_id", user.ID))
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	util.Logger.Debug("通过ID查找用户", zap.Int("user_id", id))
	row := r.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查找用户失败", zap.Error(err), zap.Int("user_id", id))
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return user, nil
}

// FindByEmail 通过邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	util.Logger.Debug("通过邮箱查找用户", zap.String("email", email))
	row := r.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查找用户失败", zap.Error(err))
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email existence: %w", err)
	}
	return exists, nil
}

func (r *userRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE phone_number = ?)", phone).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check phone existence: %w", err)
	}
	return exists, nil
}

// Update 更新用户资料
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE users
		SET full_name = ?, email = ?, phone_number = ?, address = ?, profile_image_url = ?
		WHERE id = ?`,
		user.FullName, user.Email, nullString(user.PhoneNumber), user.Address, user.ProfileImageURL, user.ID)
	if err != nil {
		util.Logger.Error("更新用户失败", zap.Error(err), zap.Int("user_id", user.ID))
		return fmt.Errorf("update user %d: %w", user.ID, userConflict(err))
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.conn(ctx).ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		util.Logger.Error("更新密码失败", zap.Error(err), zap.Int("user_id", id))
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Count 返回用户总数
func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
