package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"coffeeshop-backend/internal/repository/interfaces"
	"coffeeshop-backend/internal/util"

	driver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

type txKey struct{}

// executor 是 *sql.DB 和 *sql.Tx 的公共部分
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type base struct {
	db *sql.DB
}

// conn 优先使用 ctx 中的事务
func (b base) conn(ctx context.Context) executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return b.db
}

// TxManager 基于 database/sql 的事务管理
type TxManager struct {
	db *sql.DB
}

var _ interfaces.TxManager = (*TxManager)(nil)

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTx 开启事务执行 fn，出错回滚；嵌套调用复用外层事务
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		util.Logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return err
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// isForeignKeyViolation 对应 MySQL 1451：删除被引用的父记录
func isForeignKeyViolation(err error) bool {
	var mysqlErr *driver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1451
}

// isDuplicateEntry 对应 MySQL 1062：违反唯一约束
func isDuplicateEntry(err error) bool {
	var mysqlErr *driver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// isDuplicateKey 冲突的唯一键是否为 key，MySQL 8 的键名带表名前缀
func isDuplicateKey(err error, key string) bool {
	var mysqlErr *driver.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != 1062 {
		return false
	}
	return strings.HasSuffix(mysqlErr.Message, "'"+key+"'") || strings.HasSuffix(mysqlErr.Message, "."+key+"'")
}

// userConflict 把 users 表的唯一键冲突映射到对应的哨兵错误
func userConflict(err error) error {
	if isDuplicateKey(err, "phone_number") {
		return interfaces.ErrDuplicatePhone
	}
	if isDuplicateEntry(err) {
		return interfaces.ErrDuplicate
	}
	return err
}
